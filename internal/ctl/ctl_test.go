package ctl

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchURL(t *testing.T) {
	u, err := watchURL("http://127.0.0.1:8080/", nil)
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:8080/ws", u)

	u, err = watchURL("https://tle.example.com", []string{"parsed", "log"})
	require.NoError(t, err)
	assert.Equal(t, "wss://tle.example.com/ws?types=parsed%2Clog", u)

	_, err = watchURL("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestRenderEvent(t *testing.T) {
	out := renderEvent([]byte(`{"type":"state","ts":"2026-01-02T03:04:05Z","from":"IDLE","to":"REFRESHING"}`))
	assert.Contains(t, out, "IDLE")
	assert.Contains(t, out, "REFRESHING")

	out = renderEvent([]byte(`{"type":"parsed","ok":true,"catalog_number":5,"name":"VANGUARD 1"}`))
	assert.Contains(t, out, "00005")
	assert.Contains(t, out, "VANGUARD 1")

	out = renderEvent([]byte(`{"type":"parsed","ok":false,"kind":"checksum","error":"line 1 checksum mismatch"}`))
	assert.Contains(t, out, "REJECT")
	assert.Contains(t, out, "checksum")

	out = renderEvent([]byte(`{"type":"parsed","ok":false,"accepted":3,"rejected":1}`))
	assert.Contains(t, out, "3 accepted, 1 rejected")

	out = renderEvent([]byte(`{"type":"catalog_refreshed","source":"network","accepted":12,"rejected":0}`))
	assert.Contains(t, out, "12 sets from network")

	out = renderEvent([]byte(`not json`))
	assert.Contains(t, out, "not json")
}

func TestParseSurfacesRejection(t *testing.T) {
	var gotBody, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"ok":false,"kind":"checksum","error":"line 2 checksum mismatch"}`))
	}))
	defer srv.Close()

	in := filepath.Join(t.TempDir(), "set.tle")
	require.NoError(t, os.WriteFile(in, []byte("1 x\n2 y\n"), 0o644))

	err := Parse(srv.URL, ParseOptions{Input: in, Strict: true})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "checksum", pe.Kind)
	assert.Equal(t, "line 2 checksum mismatch", pe.Message)
	assert.Equal(t, "1 x\n2 y\n", gotBody)
	assert.Equal(t, "strict=1", gotQuery)
}

func TestRunnerControl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/api/pause":
			_, _ = w.Write([]byte(`{"ok":true,"message":"refresh paused"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"ok":false,"error":"catalog refresh failed"}`))
		}
	}))
	defer srv.Close()

	assert.NoError(t, Pause(srv.URL, true))
	assert.Error(t, Refresh(srv.URL, true))
}

func TestShortEpoch(t *testing.T) {
	assert.Equal(t, "2015-11-06 21:47:32", shortEpoch("2015-11-06T21:47:32.864928Z"))
	assert.Equal(t, "garbage", shortEpoch("garbage"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "2h 14m 8s", formatDuration(2*3600e9+14*60e9+8e9))
	assert.Equal(t, "45s", formatDuration(45e9))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "garbage", formatSince("garbage"))
	assert.Contains(t, formatSince(time.Now().Add(-3*time.Hour).Format(time.RFC3339)), "3 hours ago")
	assert.Equal(t, "ab  ", padRight("ab", 4))
}

func TestVersionSkew(t *testing.T) {
	rep := versionReport{Daemon: &daemonVersion{Version: "v1.2.0"}}
	rep.CLI.Version = "v1.2.0"
	assert.False(t, rep.Skewed())

	rep.CLI.Version = "v1.1.0"
	assert.True(t, rep.Skewed())
	assert.Contains(t, renderVersion(rep), "versions differ")

	rep.CLI.Version = "dev"
	assert.False(t, rep.Skewed())

	rep.Daemon = nil
	rep.DaemonError = "connection refused"
	assert.False(t, rep.Skewed())
	assert.Contains(t, renderVersion(rep), "unreachable: connection refused")
}
