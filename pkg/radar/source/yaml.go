package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/radar/pkg/radar/types"
)

// YAMLSource loads watchlists from a YAML file or a directory of them.
//
// File shape:
//
//	exchange: kucoin        # optional defaults, inherited by nested groups
//	timeframe: 4h
//	watchlist:
//	  - KUCOIN:BTCUSDT
//	  - sym: KUCOIN:ETHUSDT
//	    note: L1
//	  - name: alts
//	    exchange: binance
//	    watchlist: [BINANCE:ADAUSDT]
type YAMLSource struct{}

func (YAMLSource) Load(_ context.Context, location string) ([]types.Watchlist, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, err
		}
		lists, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", location, err)
		}
		base := strings.TrimSuffix(filepath.Base(location), filepath.Ext(location))
		for i := range lists {
			if strings.TrimSpace(lists[i].Name) == "" {
				lists[i].Name = base
			}
		}
		return lists, nil
	}

	var files []string
	err = filepath.WalkDir(location, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []types.Watchlist
	for _, full := range files {
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		lists, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		// Prefix list names with the file's relative path, without extension.
		rel, err := filepath.Rel(location, full)
		if err != nil {
			rel = filepath.Base(full)
		}
		prefix := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		for i := range lists {
			if strings.TrimSpace(lists[i].Name) == "" {
				lists[i].Name = prefix
			} else {
				lists[i].Name = prefix + "/" + lists[i].Name
			}
		}
		all = append(all, lists...)
	}
	return all, nil
}

// market carries the exchange/timeframe a group inherits.
type market struct {
	exchange  types.Exchange
	timeframe types.Timeframe
}

func parseYAML(data []byte) ([]types.Watchlist, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("invalid yaml: expected map with 'watchlist'")
	}
	wlNode, ok := root["watchlist"]
	if !ok || wlNode == nil {
		return nil, fmt.Errorf("invalid yaml: missing 'watchlist'")
	}
	top, err := inherit(market{}, root)
	if err != nil {
		return nil, err
	}

	var lists []types.Watchlist
	var walk func(node any, path []string, m market) error
	walk = func(node any, path []string, m market) error {
		nodes, ok := node.([]any)
		if !ok {
			return fmt.Errorf("invalid yaml: 'watchlist' under %q must be a list", deriveName(path))
		}
		var items []types.Item
		for _, e := range nodes {
			if it, ok := toItem(e); ok {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			lists = append(lists, types.Watchlist{
				Name:      deriveName(path),
				Exchange:  m.exchange,
				Timeframe: m.timeframe,
				Items:     items,
			})
		}
		for _, e := range nodes {
			g, ok := e.(map[string]any)
			if !ok {
				continue
			}
			child, ok := g["watchlist"]
			if !ok {
				continue
			}
			next := append([]string(nil), path...)
			if name, ok := g["name"].(string); ok && name != "" {
				next = append(next, name)
			}
			gm, err := inherit(m, g)
			if err != nil {
				return err
			}
			if err := walk(child, next, gm); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(wlNode, nil, top); err != nil {
		return nil, err
	}
	return lists, nil
}

func inherit(parent market, node map[string]any) (market, error) {
	m := parent
	if v, ok := node["exchange"]; ok && v != nil {
		ex, err := types.ParseExchange(fmt.Sprint(v))
		if err != nil {
			return m, err
		}
		m.exchange = ex
	}
	if v, ok := node["timeframe"]; ok && v != nil {
		tf, err := types.ParseTimeframe(fmt.Sprint(v))
		if err != nil {
			return m, err
		}
		m.timeframe = tf
	}
	return m, nil
}

// toItem accepts a bare symbol string or a map with "sym" and optional "note".
func toItem(v any) (types.Item, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return types.Item{Sym: s}, s != ""
	case map[string]any:
		if _, ok := t["watchlist"]; ok {
			return types.Item{}, false
		}
		sym, ok := t["sym"]
		if !ok || sym == nil {
			return types.Item{}, false
		}
		it := types.Item{Sym: strings.TrimSpace(fmt.Sprint(sym))}
		if note, ok := t["note"]; ok && note != nil {
			it.Note = fmt.Sprint(note)
		}
		return it, it.Sym != ""
	}
	return types.Item{}, false
}

func deriveName(path []string) string {
	return strings.Join(path, "/")
}
