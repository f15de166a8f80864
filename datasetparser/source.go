// Package datasetparser fetches and decodes the VetLek and Vidal datasets and the raw
// monograph corpus from a file, HTTP or S3 source.
package datasetparser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/giygas/vetref/logging"
)

// Source returns the raw bytes stored at a relative path
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FileSource reads documents below a root directory
type FileSource struct {
	Root string
}

func NewFileSource(root string) *FileSource {
	return &FileSource{Root: root}
}

func (s *FileSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleanName := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleanName) || cleanName == ".." || strings.HasPrefix(cleanName, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("invalid filepath: %s", name)
	}

	full := filepath.Join(s.Root, cleanName)
	content, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", full, err)
	}
	return content, nil
}

// HTTPSource downloads documents relative to a base URL. No timeout is set on the
// client; cancellation comes from the context.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{BaseURL: baseURL, Client: &http.Client{}}
}

func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	target, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", target, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", target, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: status %d", target, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (s *HTTPSource) resolve(name string) (string, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", s.BaseURL, err)
	}
	base.Path = path.Join("/", base.Path, name)
	return base.String(), nil
}
