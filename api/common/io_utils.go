package common

import (
	"bytes"
	"io"
)

// BodyChunkSize is the size of each read made by CollectBody.
const BodyChunkSize = 4096

// BodyResult is the outcome of CollectBody: the whole body, or the error
// that stopped the read.
type BodyResult struct {
	Body []byte
	Err  error
}

// CollectBody reads r chunk by chunk, in arrival order, on its own goroutine
// until io.EOF. Exactly one BodyResult is sent on the returned channel, which
// is buffered so the reader never blocks on an abandoned receiver.
func CollectBody(r io.Reader) <-chan BodyResult {
	done := make(chan BodyResult, 1)
	go func() {
		var buf bytes.Buffer
		chunk := make([]byte, BodyChunkSize)
		for {
			n, err := r.Read(chunk)
			buf.Write(chunk[:n])
			switch {
			case err == io.EOF:
				done <- BodyResult{Body: buf.Bytes()}
				return
			case err != nil:
				done <- BodyResult{Err: err}
				return
			}
		}
	}()
	return done
}
