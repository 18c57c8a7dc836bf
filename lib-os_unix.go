//go:build !windows

package main

import (
	"golang.org/x/sys/unix"
)

func currentDir(drive string) (string, error) {
	if drive != "" {
		return "", fef("drive letters are not used on this platform")
	}
	return unix.Getwd()
}

func changeDir(path string) error {
	return unix.Chdir(path)
}
