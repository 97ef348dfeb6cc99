//go:build darwin

package desktop

import "golang.org/x/sys/unix"

// osVersion returns the macOS product version, e.g. "14.4.1".
func osVersion() (string, error) {
	return unix.Sysctl("kern.osproductversion")
}
