package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/fest/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestUpload(t *testing.T) {
	var gotPreset, gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		gotPreset = r.FormValue(FieldPreset)
		f, hdr, err := r.FormFile(FieldFile)
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)
		_, _ = w.Write([]byte(`{"url":"http://cdn/x.png","secure_url":"https://cdn/x.png"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "fest_unsigned", WithHTTPClient(srv.Client()))
	url, err := c.Upload(context.Background(), "/tmp/poster.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", url)
	assert.Equal(t, "fest_unsigned", gotPreset)
	assert.Equal(t, "poster.png", gotName)
	assert.Equal(t, "PNGDATA", gotBody)
}

func TestUploadFallsBackToURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"url":"http://cdn/y.jpg"}`))
	}))
	defer srv.Close()

	url, err := New(srv.URL, "p", WithHTTPClient(srv.Client())).
		Upload(context.Background(), "y.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/y.jpg", url)
}

func TestUploadErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New("", "p").Upload(ctx, "a.png", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrNotConfigured)

	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer rejecting.Close()

	c := New(rejecting.URL, "p", WithHTTPClient(rejecting.Client()))
	_, err = c.Upload(ctx, "a.png", strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyFile)

	_, err = c.Upload(ctx, "a.png", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Upload preset not found")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()
	_, err = New(empty.URL, "p", WithHTTPClient(empty.Client())).Upload(ctx, "a.png", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrNoURL)
}
