//go:build windows

package server

import "os"

// notifyReload is a no-op; Windows has no SIGHUP.
func notifyReload(chan<- os.Signal) {}
