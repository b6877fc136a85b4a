//go:build !linux

package main

import "runtime"

// Cocoa and Core Audio expect the window and capture setup on the process's
// main thread.
func init() {
	runtime.LockOSThread()
}
