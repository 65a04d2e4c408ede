//go:build !windows && !nacl && !plan9
// +build !windows,!nacl,!plan9

package common

import (
	"io"
	"log/syslog"
	"net/url"

	"github.com/sirupsen/logrus"
	logrus_syslog "github.com/sirupsen/logrus/hooks/syslog"
)

// NewSyslogHook ships all log entries to the syslog daemon at url and stops
// writing them locally.
func NewSyslogHook(url *url.URL, prefix string) error {
	hook, err := logrus_syslog.NewSyslogHook(url.Scheme, url.Host, syslog.LOG_INFO|syslog.LOG_DAEMON, prefix)
	if err != nil {
		return err
	}
	logrus.AddHook(hook)
	logrus.SetOutput(io.Discard)
	return nil
}
