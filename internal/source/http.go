package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	appLog "github.com/hangyu-feng/myplan-calendar/internal/log"
)

// cacheEntry holds HTTP cache metadata for a snapshot URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FetchResult is the raw outcome of one conditional GET.
type FetchResult struct {
	Body      []byte
	FromCache bool // true if the cached body was reused (304 or fetch failure)
}

// HTTP fetches a JSON snapshot document with ETag / Last-Modified
// revalidation and a disk-backed cache that also serves as a fallback when
// the endpoint is unreachable.
type HTTP struct {
	URL      string
	client   *http.Client
	cacheDir string
}

// NewHTTP creates an HTTP source. cacheDir holds one subdirectory per URL.
func NewHTTP(url, cacheDir string, timeout time.Duration) *HTTP {
	if cacheDir == "" {
		cacheDir = "./cache/snapshots"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTP{
		URL:      url,
		client:   &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
	}
}

func (h *HTTP) Load(ctx context.Context) ([]extract.Item, error) {
	res, err := h.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(res.Body)
}

// Fetch performs the conditional GET and maintains the cache.
func (h *HTTP) Fetch(ctx context.Context) (FetchResult, error) {
	if h.URL == "" {
		return FetchResult{}, errors.New("source: url is empty")
	}

	cachePath := h.cachePathForURL(h.URL)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return FetchResult{}, err
	}

	meta, _ := loadCacheMeta(cachePath)
	cachedBody, _ := os.ReadFile(filepath.Join(cachePath, "body.json"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	req.Header.Set("Accept", "application/json")
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Info("snapshot fetch start", "url", redactURL(h.URL))

	resp, err := h.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 {
			appLog.Error("snapshot fetch network error, using cached body", err, "url", redactURL(h.URL))
			return FetchResult{Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("source: fetch: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return FetchResult{}, err
		}
		newMeta := cacheEntry{
			URL:          h.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := saveCache(cachePath, newMeta, body); err != nil {
			appLog.Error("snapshot cache save failed", err, "url", redactURL(h.URL))
		}
		appLog.Info("snapshot fetch success", "url", redactURL(h.URL), "status", resp.StatusCode, "bytes", len(body))
		return FetchResult{Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("source: 304 Not Modified but no cached body available")
		}
		appLog.Info("snapshot not modified; using cache", "url", redactURL(h.URL))
		return FetchResult{Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("snapshot fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(h.URL), "status", resp.StatusCode)
			return FetchResult{Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, fmt.Errorf("source: fetch: %s", resp.Status)
	}
}

func (h *HTTP) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(h.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.json"), body, 0o600); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL keeps scheme and host only; plan URLs may carry session tokens.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "...(redacted)"
	}
	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
