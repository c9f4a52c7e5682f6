package torrent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQBServer(t *testing.T, logins *atomic.Int32, expireFirst bool) *httptest.Server {
	t.Helper()
	var expired atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("username") != "admin" || r.Form.Get("password") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		logins.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: "session"})
		_, _ = w.Write([]byte("Ok."))
	})
	mux.HandleFunc("/api/v2/torrents/info", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("SID"); err != nil || c.Value != "session" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if expireFirst && !expired.Swap(true) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`[{"hash":"ABC123","name":"Show.S01E02.720p","state":"stalledUP","progress":1,"size":1000,"save_path":"/downloads"}]`))
	})
	mux.HandleFunc("/api/v2/torrents/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("hash"))
		_, _ = w.Write([]byte(`[{"name":"Show.S01E02.720p/Show.S01E02.720p.mkv","size":900},{"name":"Show.S01E02.720p/info.nfo","size":1}]`))
	})
	mux.HandleFunc("/api/v2/torrents/add", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("urls") == "" {
			_, _ = w.Write([]byte("Fails."))
			return
		}
		_, _ = w.Write([]byte("Ok."))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestQBittorrent_List(t *testing.T) {
	var logins atomic.Int32
	server := newQBServer(t, &logins, false)
	c := NewQBittorrent(server.URL, "admin", "secret")

	torrents, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, torrents, 1)
	assert.Equal(t, "abc123", torrents[0].Hash)
	assert.Equal(t, "seeding", torrents[0].State)
	assert.InDelta(t, 1.0, torrents[0].Progress, 0.001)

	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), logins.Load(), "session cookie is reused")
}

func TestQBittorrent_ReauthenticatesOnExpiredSession(t *testing.T) {
	var logins atomic.Int32
	server := newQBServer(t, &logins, true)
	c := NewQBittorrent(server.URL, "admin", "secret")

	_, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), logins.Load())
}

func TestQBittorrent_BadCredentials(t *testing.T) {
	var logins atomic.Int32
	server := newQBServer(t, &logins, false)
	c := NewQBittorrent(server.URL, "admin", "wrong")

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestQBittorrent_Files(t *testing.T) {
	var logins atomic.Int32
	server := newQBServer(t, &logins, false)
	c := NewQBittorrent(server.URL, "admin", "secret")

	files, err := c.Files(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join("/downloads", "Show.S01E02.720p", "Show.S01E02.720p.mkv"), files[0].Path)
	assert.Equal(t, int64(900), files[0].Size)
}

func TestQBittorrent_Add(t *testing.T) {
	var logins atomic.Int32
	server := newQBServer(t, &logins, false)
	c := NewQBittorrent(server.URL, "admin", "secret")

	require.NoError(t, c.Add(context.Background(), "magnet:?xt=urn:btih:abc123", "/downloads"))
	assert.Error(t, c.Add(context.Background(), "", ""))
}
