//go:build !darwin

package desktop

func newSpaceAPI() (spaceAPI, error) {
	return nil, ErrUnsupported
}
