package main

import (
	"os"
	"strconv"
	"strings"
)

func columnsEnv() int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COLUMNS"))); err == nil && n > 0 {
		return n
	}
	return 0
}
