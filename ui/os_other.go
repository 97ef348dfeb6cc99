//go:build !darwin

package ui

type defaultOS struct{}

func (defaultOS) TransformToForeground() {}
func (defaultOS) TransformToBackground() {}

func getOS() OS {
	return defaultOS{}
}
