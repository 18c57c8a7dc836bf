//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// readKey switches the console out of line mode for a single read. ok is
// false when the timeout expires first.
func readKey(timeoutMs int) (key string, ok bool, err error) {
	h := windows.Handle(os.Stdin.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return "", false, err
	}
	raw := mode &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_LINE_INPUT | windows.ENABLE_PROCESSED_INPUT)
	if err := windows.SetConsoleMode(h, raw); err != nil {
		return "", false, err
	}
	defer windows.SetConsoleMode(h, mode)

	wait := uint32(windows.INFINITE)
	if timeoutMs > 0 {
		wait = uint32(timeoutMs)
	}
	ev, err := windows.WaitForSingleObject(h, wait)
	if err != nil {
		return "", false, err
	}
	if ev == uint32(windows.WAIT_TIMEOUT) {
		return "", false, nil
	}

	buf := make([]byte, 8)
	n, err := os.Stdin.Read(buf)
	if err != nil || n == 0 {
		return "", false, nil
	}
	return string(buf[:n]), true, nil
}
