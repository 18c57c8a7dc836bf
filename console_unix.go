//go:build !windows

package main

import (
	"time"

	term "github.com/pkg/term"
)

// readKey puts the controlling terminal in raw mode for a single read.
// ok is false when the timeout expires first.
func readKey(timeoutMs int) (key string, ok bool, err error) {
	tt, err := term.Open("/dev/tty")
	if err != nil {
		return "", false, err
	}
	defer tt.Close()

	if err := term.RawMode(tt); err != nil {
		return "", false, err
	}
	defer tt.Restore()

	if timeoutMs > 0 {
		if err := tt.SetOption(term.ReadTimeout(time.Duration(timeoutMs) * time.Millisecond)); err != nil {
			return "", false, err
		}
	}

	buf := make([]byte, 8)
	n, err := tt.Read(buf)
	if err != nil || n == 0 {
		return "", false, nil
	}
	return string(buf[:n]), true, nil
}
