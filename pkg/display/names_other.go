//go:build !darwin

package display

// displayNames is not available here; displays are identified by index.
func displayNames() ([]string, error) {
	return nil, nil
}
