//go:build !darwin

package desktop

func osVersion() (string, error) {
	return "", nil
}
