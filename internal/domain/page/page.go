package page

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Page size limits.
const (
	MaxIDLength    = 256
	MaxTitleLength = 1024
	MaxContentSize = 163840 // 160KB
)

// Page is an indexed web page: the unit of hybrid search.
type Page struct {
	id      string
	url     string
	title   string
	content string
	vector  []float32
}

// New validates and creates a Page.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Content: non-empty, max 160KB.
// URL is optional but must be absolute when present.
func New(id, rawURL, title, content string) (Page, error) {
	if id == "" {
		return Page{}, fmt.Errorf("page ID is required")
	}
	if len(id) > MaxIDLength {
		return Page{}, fmt.Errorf("page ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Page{}, fmt.Errorf("page ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(content) == "" {
		return Page{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Page{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if len(title) > MaxTitleLength {
		return Page{}, fmt.Errorf("title too long (max %d)", MaxTitleLength)
	}
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return Page{}, fmt.Errorf("url must be absolute, got %q", rawURL)
		}
	}

	return Page{id: id, url: rawURL, title: title, content: content}, nil
}

// Reconstruct creates a Page without validation (storage hydration).
func Reconstruct(id, rawURL, title, content string, vector []float32) Page {
	return Page{id: id, url: rawURL, title: title, content: content, vector: vector}
}

// ID returns the page identifier.
func (p *Page) ID() string { return p.id }

// URL returns the page address, possibly empty.
func (p *Page) URL() string { return p.url }

// Title returns the page title, possibly empty.
func (p *Page) Title() string { return p.title }

// Content returns the page body text.
func (p *Page) Content() string { return p.content }

// Vector returns the embedding of title and content.
func (p *Page) Vector() []float32 { return p.vector }

// SetVector sets the embedding in place.
func (p *Page) SetVector(v []float32) { p.vector = v }

// EmbeddingText is the text embedded for vector search.
func (p *Page) EmbeddingText() string {
	if p.title == "" {
		return p.content
	}
	return p.title + "\n\n" + p.content
}
