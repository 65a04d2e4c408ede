package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fnproject/formserver/api/messagestore"
	"github.com/fnproject/formserver/api/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formTag = `<form action="/message" method="POST">`

func TestIndex(t *testing.T) {
	srv := testServer(messagestore.NewMock())

	_, rec := routerRequest(t, srv.Router, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), formTag)
	assert.Contains(t, rec.Body.String(), `name='message'`)
}

func TestIndexAnyMethod(t *testing.T) {
	srv := testServer(messagestore.NewMock())

	for _, method := range []string{"POST", "PUT", "DELETE"} {
		_, rec := routerRequest(t, srv.Router, method, "/", nil)
		assert.Equal(t, http.StatusOK, rec.Code, method)
		assert.Contains(t, rec.Body.String(), formTag, method)
	}
}

func TestMessageSubmit(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message=hello"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "hello", ms.Value())
	assert.Equal(t, 1, ms.Puts())
}

func TestMessageSubmitNoDecoding(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	for body, expected := range map[string]string{
		"message=hello+world%21": "hello+world%21",
		"message=":               "",
		"message=a=b":            "a=b",
		"other=value":            "value",
	} {
		_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader(body))
		assert.Equal(t, http.StatusFound, rec.Code, body)
		assert.Equal(t, expected, ms.Value(), body)
	}
}

func TestMessageLastWriteWins(t *testing.T) {
	dir, err := os.MkdirTemp("", "form-server")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "message.txt")

	srv := New(context.Background(), WithMessageStoreURL("file://"+filepath.ToSlash(path)))

	for _, v := range []string{"hello", "world"} {
		_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message="+v))
		require.Equal(t, http.StatusFound, rec.Code)
	}

	dat, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "world", string(dat))
}

func TestMessageMalformedBody(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	for _, body := range []string{"", "message", "no equals here"} {
		_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Empty(t, rec.Header().Get("Location"))
		assert.Equal(t, models.ErrInvalidFormBody.Error(), decodeError(t, rec))
	}
	assert.Equal(t, 0, ms.Puts(), "malformed bodies must not touch the store")
}

func TestMessageStoreFailure(t *testing.T) {
	ms := messagestore.NewMock()
	ms.Err = errors.New("open message.txt: permission denied")
	srv := testServer(ms)

	_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message=hello"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"), "failed writes must not redirect")
	assert.Equal(t, ErrInternalServerError.Error(), decodeError(t, rec))
}

func TestNotFound(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	for _, test := range []struct {
		method string
		path   string
	}{
		{"GET", "/unknown"},
		{"GET", "/message"},
		{"PUT", "/message"},
		{"POST", "/message/extra"},
		{"POST", "/message/"},
		{"GET", "//"},
		{"POST", "/MESSAGE"},
	} {
		_, rec := routerRequest(t, srv.Router, test.method, test.path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", test.method, test.path)
		assert.Empty(t, rec.Header().Get("Location"), "%s %s", test.method, test.path)
		assert.Equal(t, models.ErrRouteNotFound.Error(), decodeError(t, rec))
	}
	assert.Equal(t, 0, ms.Puts())
}

func TestMessageBodyTooLarge(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms, LimitRequestBody(16))

	_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message="+strings.Repeat("x", 64)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// no Content-Length, caught while reading
	req := createRequest(t, "POST", "/message", nil)
	req.Body = io.NopCloser(strings.NewReader("message=" + strings.Repeat("x", 64)))
	req.ContentLength = -1
	_, rec = routerRequest2(t, srv.Router, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	assert.Equal(t, 0, ms.Puts())

	_, rec = routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message=small"))
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestMessageRateLimited(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms, WithSubmitRateLimit(0.001, 1))

	_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message=first"))
	assert.Equal(t, http.StatusFound, rec.Code)

	_, rec = routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message=second"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "first", ms.Value())

	// the page is never limited
	_, rec = routerRequest(t, srv.Router, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMessageClientCancelled(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := createRequest(t, "POST", "/message", nil)
	req.Body = pr
	req.ContentLength = -1
	req = req.WithContext(ctx)

	_, rec := routerRequest2(t, srv.Router, req)
	assert.Equal(t, models.ErrClientCancel.Code(), rec.Code)
	assert.Equal(t, 0, ms.Puts())
}

func TestMessageClientGone(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	req := createRequest(t, "POST", "/message", nil)
	req.Body = io.NopCloser(io.MultiReader(strings.NewReader("message=hal"), &errReader{io.ErrUnexpectedEOF}))
	req.ContentLength = -1

	_, rec := routerRequest2(t, srv.Router, req)
	assert.Equal(t, models.ErrClientCancel.Code(), rec.Code)
	assert.Equal(t, 0, ms.Puts())
}

func TestMessageReadTimeout(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	req := createRequest(t, "POST", "/message", nil)
	readTimeout := &net.OpError{Op: "read", Net: "tcp", Err: os.ErrDeadlineExceeded}
	req.Body = io.NopCloser(io.MultiReader(strings.NewReader("message=slo"), &errReader{readTimeout}))
	req.ContentLength = -1

	_, rec := routerRequest2(t, srv.Router, req)
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Equal(t, models.ErrRequestTimeout.Error(), decodeError(t, rec))
	assert.Equal(t, 0, ms.Puts())
}

type errReader struct{ err error }

func (e *errReader) Read([]byte) (int, error) { return 0, e.err }

func TestMessageSubmitProperty(t *testing.T) {
	ms := messagestore.NewMock()
	srv := testServer(ms)

	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("stored value equals the submitted value", prop.ForAll(
		func(v string) bool {
			_, rec := routerRequest(t, srv.Router, "POST", "/message", strings.NewReader("message="+v))
			return rec.Code == http.StatusFound &&
				rec.Header().Get("Location") == "/" &&
				ms.Value() == v
		},
		gen.AnyString().SuchThat(func(s string) bool { return !strings.Contains(s, "=") }),
	))

	properties.TestingRun(t)
}
