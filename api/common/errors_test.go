package common

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsClientGone(t *testing.T) {
	assert.True(t, IsClientGone(io.ErrUnexpectedEOF))
	assert.True(t, IsClientGone(fmt.Errorf("read body: %w", syscall.ECONNRESET)))
	assert.True(t, IsClientGone(&net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}))

	assert.False(t, IsClientGone(nil))
	assert.False(t, IsClientGone(errors.New("disk full")))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	readTimeout := &net.OpError{Op: "read", Net: "tcp", Err: os.ErrDeadlineExceeded}
	assert.True(t, IsTimeout(readTimeout))
	assert.True(t, IsTimeout(fmt.Errorf("read body: %w", timeoutErr{})))
	assert.False(t, IsClientGone(readTimeout), "a server read deadline is not the client leaving")

	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(io.ErrUnexpectedEOF))
	assert.False(t, IsTimeout(&net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}))
}
