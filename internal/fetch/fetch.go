// Package fetch downloads remote defect datasets into a local cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/defectviz/internal/dataset"
)

const defaultFilename = "dataset.csv"

// File describes a downloaded dataset.
type File struct {
	URL      string
	Path     string
	Filename string
	Cached   bool
}

// Download fetches rawURL into cacheDir. An already cached file is reused
// unless force is set. The payload must parse as a dataset before it is
// moved into the cache.
func Download(ctx context.Context, rawURL, cacheDir string, force bool) (File, error) {
	if cacheDir == "" {
		return File{}, fmt.Errorf("cache directory is required")
	}
	filename, err := filenameFor(rawURL)
	if err != nil {
		return File{}, err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return File{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	destPath := filepath.Join(cacheDir, filename)
	if !force {
		if _, err := os.Stat(destPath); err == nil {
			return File{URL: rawURL, Path: destPath, Filename: filename, Cached: true}, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return File{}, fmt.Errorf("failed to stat cached dataset: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(cacheDir, "download-*"+filepath.Ext(filename))
	if err != nil {
		return File{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, rawURL)
	if err != nil {
		return File{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return File{}, fmt.Errorf("failed to download dataset: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return File{}, fmt.Errorf("failed to close temp file: %w", err)
	}
	if _, err := dataset.Load(tmpPath); err != nil {
		return File{}, fmt.Errorf("downloaded file is not a valid dataset: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return File{}, fmt.Errorf("failed to move dataset into cache: %w", err)
	}
	return File{URL: rawURL, Path: destPath, Filename: filename, Cached: false}, nil
}

func filenameFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultFilename, nil
	}
	if !strings.Contains(name, ".") {
		name += ".csv"
	}
	return name, nil
}

func httpRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
