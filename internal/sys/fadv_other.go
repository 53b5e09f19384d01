//go:build !linux && !freebsd

// Package sys holds the platform hooks used when reading input files.
package sys

// Fadvise is a no-op where posix_fadvise is unavailable.
func Fadvise(fd int) error { return nil }
