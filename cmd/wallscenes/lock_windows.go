//go:build windows

package main

import (
	"fmt"
	"syscall"

	"github.com/doorhinge/wallscenes/config"
	"github.com/doorhinge/wallscenes/util/log"
	"golang.org/x/sys/windows"
)

var mutex windows.Handle

// acquireLock creates a named mutex. It reports false when another instance
// already owns it. dir is unused on Windows.
func acquireLock(_ string) (bool, error) {
	name, err := syscall.UTF16PtrFromString(config.AppName + "_SingleInstanceMutex")
	if err != nil {
		return false, err
	}

	h, err := windows.CreateMutex(nil, false, name)
	if err != nil {
		if err == windows.ERROR_ALREADY_EXISTS {
			if h != 0 {
				windows.CloseHandle(h)
			}
			return false, nil
		}
		return false, fmt.Errorf("failed to create mutex: %w", err)
	}
	mutex = h
	return true, nil
}

func releaseLock() {
	if mutex == 0 {
		return
	}
	if err := windows.ReleaseMutex(mutex); err != nil {
		log.Debugf("Failed to release mutex: %v", err)
	}
	if err := windows.CloseHandle(mutex); err != nil {
		log.Printf("Failed to close mutex handle: %v", err)
	}
}
