//go:build darwin

package desktop

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

const (
	skyLightPath       = "/System/Library/PrivateFrameworks/SkyLight.framework/SkyLight"
	coreFoundationPath = "/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation"

	cfStringEncodingUTF8 = 0x08000100
	cfNumberSInt64Type   = 4
)

// CoreFoundation and SkyLight entry points, resolved once.
var (
	cgsMainConnectionID         func() int32
	cgsCopyManagedDisplaySpaces func(conn int32) uintptr
	cgsSetDesktopImageURL       func(conn int32, space uint64, url uintptr, options uintptr) int32

	cfArrayGetCount                        func(array uintptr) int
	cfArrayGetValueAtIndex                 func(array uintptr, index int) uintptr
	cfDictionaryGetValue                   func(dict uintptr, key uintptr) uintptr
	cfStringCreateWithCString              func(alloc uintptr, cstr string, encoding uint32) uintptr
	cfStringGetCString                     func(str uintptr, buf *byte, size int, encoding uint32) bool
	cfNumberGetValue                       func(number uintptr, numberType int, out *int64) bool
	cfURLCreateFromFileSystemRepresentation func(alloc uintptr, path string, length int, isDirectory bool) uintptr
	cfRelease                              func(ref uintptr)

	keySpaces            uintptr
	keyManagedSpaceID    uintptr
	keyDisplayIdentifier uintptr

	loadOnce sync.Once
	loadErr  error
)

type symbol struct {
	name string
	fn   any
}

// bind resolves every symbol before registering any of them, so a missing
// symbol is reported as an error instead of a panic.
func bind(libPath string, symbols []symbol) error {
	lib, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("loading %s: %w", libPath, err)
	}
	for _, s := range symbols {
		if _, err := purego.Dlsym(lib, s.name); err != nil {
			return fmt.Errorf("resolving %s: %w", s.name, err)
		}
	}
	for _, s := range symbols {
		purego.RegisterLibFunc(s.fn, lib, s.name)
	}
	return nil
}

func loadSkyLight() error {
	loadOnce.Do(func() {
		loadErr = bind(coreFoundationPath, []symbol{
			{"CFArrayGetCount", &cfArrayGetCount},
			{"CFArrayGetValueAtIndex", &cfArrayGetValueAtIndex},
			{"CFDictionaryGetValue", &cfDictionaryGetValue},
			{"CFStringCreateWithCString", &cfStringCreateWithCString},
			{"CFStringGetCString", &cfStringGetCString},
			{"CFNumberGetValue", &cfNumberGetValue},
			{"CFURLCreateFromFileSystemRepresentation", &cfURLCreateFromFileSystemRepresentation},
			{"CFRelease", &cfRelease},
		})
		if loadErr != nil {
			return
		}
		loadErr = bind(skyLightPath, []symbol{
			{"CGSMainConnectionID", &cgsMainConnectionID},
			{"CGSCopyManagedDisplaySpaces", &cgsCopyManagedDisplaySpaces},
			{"CGSSetDesktopImageURL", &cgsSetDesktopImageURL},
		})
		if loadErr != nil {
			return
		}
		keySpaces = cfStringCreateWithCString(0, "Spaces", cfStringEncodingUTF8)
		keyManagedSpaceID = cfStringCreateWithCString(0, "ManagedSpaceID", cfStringEncodingUTF8)
		keyDisplayIdentifier = cfStringCreateWithCString(0, "Display Identifier", cfStringEncodingUTF8)
	})
	return loadErr
}

// skyLightAPI talks to the window server over the process's main connection.
type skyLightAPI struct {
	conn int32
}

func newSpaceAPI() (spaceAPI, error) {
	if err := loadSkyLight(); err != nil {
		return nil, err
	}
	return &skyLightAPI{conn: cgsMainConnectionID()}, nil
}

func cfStringValue(ref uintptr) string {
	if ref == 0 {
		return ""
	}
	buf := make([]byte, 256)
	if !cfStringGetCString(ref, &buf[0], len(buf), cfStringEncodingUTF8) {
		return ""
	}
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func (s *skyLightAPI) ManagedSpaces() ([]managedDisplay, error) {
	arr := cgsCopyManagedDisplaySpaces(s.conn)
	if arr == 0 {
		return nil, fmt.Errorf("CGSCopyManagedDisplaySpaces returned nothing")
	}
	defer cfRelease(arr)

	n := cfArrayGetCount(arr)
	out := make([]managedDisplay, 0, n)
	for i := 0; i < n; i++ {
		dict := cfArrayGetValueAtIndex(arr, i)
		md := managedDisplay{Identifier: cfStringValue(cfDictionaryGetValue(dict, keyDisplayIdentifier))}

		spaces := cfDictionaryGetValue(dict, keySpaces)
		if spaces != 0 {
			for j := 0; j < cfArrayGetCount(spaces); j++ {
				space := cfArrayGetValueAtIndex(spaces, j)
				num := cfDictionaryGetValue(space, keyManagedSpaceID)
				var id int64
				if num != 0 && cfNumberGetValue(num, cfNumberSInt64Type, &id) {
					md.Spaces = append(md.Spaces, uint64(id))
				}
			}
		}
		out = append(out, md)
	}
	return out, nil
}

func (s *skyLightAPI) SetDesktopImage(spaceID uint64, imagePath string) error {
	url := cfURLCreateFromFileSystemRepresentation(0, imagePath, len(imagePath), false)
	if url == 0 {
		return fmt.Errorf("creating URL for %s", imagePath)
	}
	defer cfRelease(url)

	if status := cgsSetDesktopImageURL(s.conn, spaceID, url, 0); status != 0 {
		return fmt.Errorf("CGSSetDesktopImageURL status %d", status)
	}
	return nil
}
