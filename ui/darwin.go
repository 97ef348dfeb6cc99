//go:build darwin

package ui

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Foundation -framework AppKit

#import <AppKit/AppKit.h>

// 0 is NSApplicationActivationPolicyRegular (Dock icon and menu bar),
// 1 is NSApplicationActivationPolicyAccessory (menu bar extra only).
void setActivationPolicy(long policy) {
    [NSApp setActivationPolicy:policy];
    if (policy == 0) {
        [NSApp activateIgnoringOtherApps:YES];
    }
}
*/
import "C"

const (
	policyRegular   = 0
	policyAccessory = 1
)

// darwinOS shows a Dock icon only while a window is open.
type darwinOS struct{}

// TransformToForeground gives the app a Dock icon and brings it forward.
func (d *darwinOS) TransformToForeground() {
	C.setActivationPolicy(C.long(policyRegular))
}

// TransformToBackground removes the Dock icon, leaving the tray item.
func (d *darwinOS) TransformToBackground() {
	C.setActivationPolicy(C.long(policyAccessory))
}

func getOS() OS {
	return &darwinOS{}
}
