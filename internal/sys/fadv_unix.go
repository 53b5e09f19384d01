//go:build linux || freebsd

// Package sys holds the platform hooks used when reading input files.
package sys

import "golang.org/x/sys/unix"

// Fadvise tells the kernel fd will be read sequentially from start to end.
func Fadvise(fd int) error {
	return unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL)
}
