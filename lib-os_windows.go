//go:build windows

package main

import (
	str "strings"

	"golang.org/x/sys/windows"
)

// currentDir asks for the full path of "X:." which Windows resolves
// against that drive's own current directory.
func currentDir(drive string) (string, error) {
	if drive == "" {
		return windows.Getwd()
	}
	d := str.TrimSuffix(str.TrimSpace(drive), ":")
	if len(d) != 1 {
		return "", fef("invalid drive '%s'", drive)
	}
	rel, err := windows.UTF16PtrFromString(d + ":.")
	if err != nil {
		return "", err
	}
	buf := make([]uint16, windows.MAX_PATH)
	n, err := windows.GetFullPathName(rel, uint32(len(buf)), &buf[0], nil)
	if err != nil {
		return "", err
	}
	if int(n) > len(buf) {
		buf = make([]uint16, n)
		if n, err = windows.GetFullPathName(rel, uint32(len(buf)), &buf[0], nil); err != nil {
			return "", err
		}
	}
	return windows.UTF16ToString(buf[:n]), nil
}

func changeDir(path string) error {
	return windows.Chdir(path)
}
