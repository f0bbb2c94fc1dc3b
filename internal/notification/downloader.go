package notification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"
)

// Downloader fetches a resource and returns a local path to it
type Downloader interface {
	Download(ctx context.Context, uri string) (string, error)
}

// FileDownloader downloads HTTP(S) resources into a directory.
// Repeated downloads of the same URI return the cached path, so factories
// using it can be retried safely. Local paths and file:// URIs are returned
// as-is.
type FileDownloader struct {
	client *http.Client
	dir    string

	mu    sync.Mutex
	files map[string]string
	order []string
}

// NewFileDownloader creates a downloader storing files in dir.
// An empty dir uses the system temp directory.
func NewFileDownloader(dir string) *FileDownloader {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "doodledash")
	}
	return &FileDownloader{
		client: &http.Client{Timeout: 30 * time.Second},
		dir:    dir,
		files:  make(map[string]string),
	}
}

// Download implements Downloader
func (d *FileDownloader) Download(ctx context.Context, uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", uri, err)
	}

	switch u.Scheme {
	case "":
		return uri, nil
	case "file":
		return u.Path, nil
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.files[uri]; ok {
		return p, nil
	}

	p, err := d.fetch(ctx, uri, u)
	if err != nil {
		return "", err
	}
	d.files[uri] = p
	d.order = append(d.order, p)
	return p, nil
}

func (d *FileDownloader) fetch(ctx context.Context, uri string, u *url.URL) (string, error) {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", uri, resp.Status)
	}

	sum := sha256.Sum256([]byte(uri))
	name := hex.EncodeToString(sum[:8]) + "-" + path.Base(u.Path)
	target := filepath.Join(d.dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", target, err)
	}
	return target, nil
}

// Downloaded returns the paths of downloaded files in download order
func (d *FileDownloader) Downloaded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.order...)
}
