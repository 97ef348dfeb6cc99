// Package library owns the user's wallpaper images and scenes: the in-memory
// collections, their JSON document on disk, and the folder imported image
// files are copied into.
package library

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrImageNotFound is returned when no image record has the requested id.
	ErrImageNotFound = errors.New("image not found")
	// ErrSceneNotFound is returned when no scene has the requested id.
	ErrSceneNotFound = errors.New("scene not found")
)

// Image is a wallpaper in the library.
type Image struct {
	ID          string   `json:"id"`
	FileName    string   `json:"fileName"`    // Relative to the images folder
	DisplayName string   `json:"displayName"` // User label
	Groups      []string `json:"groups"`      // Sorted, de-duplicated tags
}

// InGroup reports whether the image carries the given tag.
func (img Image) InGroup(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, g := range img.Groups {
		if g == tag {
			return true
		}
	}
	return false
}

// Scene maps display identifiers to image ids.
type Scene struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Assignments       map[string]string `json:"assignments"` // display id -> image id
	SetForAllDesktops bool              `json:"setForAllDesktops"`
}

// Assignment returns the image id assigned to displayID.
func (s Scene) Assignment(displayID string) (string, bool) {
	id, ok := s.Assignments[displayID]
	return id, ok && id != ""
}

// clone returns a copy whose assignment map is not shared with s.
func (s Scene) clone() Scene {
	c := s
	c.Assignments = make(map[string]string, len(s.Assignments))
	for k, v := range s.Assignments {
		c.Assignments[k] = v
	}
	return c
}

func (img Image) clone() Image {
	c := img
	c.Groups = append([]string(nil), img.Groups...)
	return c
}

// document is the on-disk shape of the library.
type document struct {
	Images []Image `json:"images"`
	Scenes []Scene `json:"scenes"`
}

// normalizeGroups trims, drops empty tags, de-duplicates and sorts.
func normalizeGroups(groups []string) []string {
	seen := make(map[string]bool, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
