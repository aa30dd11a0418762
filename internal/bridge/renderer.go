package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Renderer resolves pre-rendered page images for paged content such as
// written books. Content IDs are opaque tokens owned by the renderer; the
// channel never inspects pixels.
type Renderer interface {
	// PageCount returns the number of pages available for the content ID.
	PageCount(contentID string) (int, error)

	// ResolvePage returns the PNG bytes for the given 1-based page.
	ResolvePage(contentID string, page int) ([]byte, error)
}

var (
	contentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	pageFilePattern  = regexp.MustCompile(`^page\d+\.png$`)
)

// PageDir is a Renderer backed by a directory tree of pre-rendered pages:
// <root>/<contentID>/page<N>.png with N starting at 1.
type PageDir struct {
	root string
}

// NewPageDir creates a PageDir rooted at the given directory.
func NewPageDir(root string) *PageDir {
	return &PageDir{root: root}
}

// PageCount implements Renderer.
func (d *PageDir) PageCount(contentID string) (int, error) {
	dir, err := d.contentDir(contentID)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("bridge: list pages for %s: %w", contentID, err)
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && pageFilePattern.MatchString(e.Name()) {
			count++
		}
	}
	return count, nil
}

// ResolvePage implements Renderer.
func (d *PageDir) ResolvePage(contentID string, page int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("bridge: invalid page %d for %s", page, contentID)
	}
	dir, err := d.contentDir(contentID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("page%d.png", page)))
	if err != nil {
		return nil, fmt.Errorf("bridge: read page %d of %s: %w", page, contentID, err)
	}
	return data, nil
}

// contentDir validates the content ID and maps it to a directory.
// IDs are restricted to a safe alphabet so callback data can never
// escape the page root.
func (d *PageDir) contentDir(contentID string) (string, error) {
	if !contentIDPattern.MatchString(contentID) {
		return "", fmt.Errorf("bridge: invalid content ID %q", contentID)
	}
	return filepath.Join(d.root, contentID), nil
}
