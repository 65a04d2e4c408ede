package common

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// IsClientGone reports whether err, returned while reading a request,
// means the client went away rather than the server failing. Read
// deadlines are not counted, see IsTimeout.
func IsClientGone(err error) bool {
	if err == nil || IsTimeout(err) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsTimeout reports whether err is a read deadline set by the server
// expiring, e.g. the http.Server ReadTimeout on a slow upload.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
