//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// detectTerminalWidth asks the kernel for the stdout window size and falls
// back to $COLUMNS when stdout is not a terminal.
func detectTerminalWidth() int {
	if ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ); err == nil && ws.Col > 0 {
		return int(ws.Col)
	}
	return columnsEnv()
}
