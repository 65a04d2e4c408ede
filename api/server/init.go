package server

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

var sigTerm os.Signal = syscall.SIGTERM

var currDir = workingDir()

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		logrus.WithError(err).Fatalln("")
	}
	// Replace forward slashes in case this is windows, URL parser errors
	return strings.Replace(dir, "\\", "/", -1)
}

func contextWithSignal(ctx context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	newCTX, halt := context.WithCancel(ctx)
	c := make(chan os.Signal, 1)
	signal.Notify(c, signals...)
	go func() {
		defer signal.Stop(c)
		select {
		case <-c:
			logrus.Info("Halting...")
			halt()
		case <-newCTX.Done():
			logrus.Info("Halting... Original server context canceled.")
		}
	}()
	return newCTX, halt
}
