package torrent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrUnauthorized is returned when qBittorrent rejects the credentials.
var ErrUnauthorized = errors.New("qbittorrent authentication failed")

// QBittorrent is a client for the qBittorrent Web API v2.
type QBittorrent struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu     sync.Mutex
	cookie string
}

var _ Client = (*QBittorrent)(nil)

// NewQBittorrent creates a qBittorrent client.
func NewQBittorrent(baseURL, username, password string) *QBittorrent {
	return &QBittorrent{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type qbTorrent struct {
	Hash     string  `json:"hash"`
	Name     string  `json:"name"`
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	Size     int64   `json:"size"`
	SavePath string  `json:"save_path"`
}

type qbFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// List returns every torrent in the session.
func (c *QBittorrent) List(ctx context.Context) ([]ClientTorrent, error) {
	var torrents []qbTorrent
	if err := c.getJSON(ctx, "/api/v2/torrents/info", nil, &torrents); err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}
	out := make([]ClientTorrent, 0, len(torrents))
	for _, t := range torrents {
		out = append(out, ClientTorrent{
			Hash:     strings.ToLower(t.Hash),
			Name:     t.Name,
			State:    mapState(t.State),
			Progress: t.Progress,
			Size:     t.Size,
			SavePath: t.SavePath,
		})
	}
	return out, nil
}

// Files returns the files of one torrent with absolute paths.
func (c *QBittorrent) Files(ctx context.Context, hash string) ([]File, error) {
	var info []qbTorrent
	if err := c.getJSON(ctx, "/api/v2/torrents/info", url.Values{"hashes": {hash}}, &info); err != nil {
		return nil, fmt.Errorf("get torrent %s: %w", hash, err)
	}
	if len(info) == 0 {
		return nil, fmt.Errorf("torrent %s: %w", hash, ErrNotFound)
	}

	var files []qbFile
	if err := c.getJSON(ctx, "/api/v2/torrents/files", url.Values{"hash": {hash}}, &files); err != nil {
		return nil, fmt.Errorf("list files of %s: %w", hash, err)
	}
	out := make([]File, 0, len(files))
	for _, f := range files {
		out = append(out, File{Path: filepath.Join(info[0].SavePath, filepath.FromSlash(f.Name)), Size: f.Size})
	}
	return out, nil
}

// Add hands a magnet link or torrent URL to the session.
func (c *QBittorrent) Add(ctx context.Context, uri, savePath string) error {
	form := url.Values{"urls": {uri}}
	if savePath != "" {
		form.Set("savepath", savePath)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/v2/torrents/add", nil, form)
	if err != nil {
		return fmt.Errorf("add torrent: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(body)) == "Fails." {
		return fmt.Errorf("add torrent: rejected by qbittorrent")
	}
	return nil
}

func (c *QBittorrent) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends an authenticated request, logging in again once if the session
// cookie has expired.
func (c *QBittorrent) do(ctx context.Context, method, path string, query, form url.Values) (*http.Response, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if err := c.authenticate(ctx); err != nil {
			return nil, err
		}

		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		c.mu.Lock()
		req.AddCookie(&http.Cookie{Name: "SID", Value: c.cookie})
		c.mu.Unlock()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		if resp.StatusCode == http.StatusForbidden && attempt == 0 {
			drain(resp)
			c.mu.Lock()
			c.cookie = ""
			c.mu.Unlock()
			continue
		}
		if resp.StatusCode != http.StatusOK {
			drain(resp)
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		return resp, nil
	}
	return nil, ErrUnauthorized
}

func (c *QBittorrent) authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cookie != "" {
		return nil
	}

	form := url.Values{"username": {c.username}, "password": {c.password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "SID" {
			c.cookie = cookie.Value
			return nil
		}
	}
	return fmt.Errorf("%w: no session cookie", ErrUnauthorized)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// mapState folds qBittorrent's many states into a few.
func mapState(state string) string {
	switch state {
	case "downloading", "metaDL", "allocating", "forcedDL", "queuedDL":
		return "downloading"
	case "checkingUP", "checkingDL", "checkingResumeData":
		return "checking"
	case "uploading", "pausedUP", "stoppedUP", "queuedUP", "forcedUP", "stalledUP":
		return "seeding"
	case "pausedDL", "stoppedDL":
		return "paused"
	case "stalledDL":
		return "stalled"
	case "error", "missingFiles":
		return "error"
	default:
		return state
	}
}
