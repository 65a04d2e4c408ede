//go:build windows || nacl || plan9
// +build windows nacl plan9

package common

import (
	"errors"
	"net/url"
)

// NewSyslogHook is not available on this platform.
func NewSyslogHook(url *url.URL, prefix string) error {
	return errors.New("syslog not supported on this system")
}
