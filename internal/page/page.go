package page

import (
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Page holds the current fragment for each mount point and renders the full
// document. Fragments are swapped whole, so a reader sees either the old or
// the new fragment for a mount, never a mix.
type Page struct {
	mu          sync.RWMutex
	title       string
	source      string
	refreshPath string
	mounts      []string
	fragments   map[string]template.HTML
	updatedAt   time.Time
	notice      string
	layout      *template.Template
}

var _ interfaces.Display = (*Page)(nil)

// Section is one mount point in document order.
type Section struct {
	Mount    string
	Fragment template.HTML
}

// Snapshot is a consistent copy of the page state.
type Snapshot struct {
	Title       string
	Source      string
	RefreshPath string
	Notice      string
	UpdatedAt   time.Time
	Sections    []Section
}

// NewPage builds a page with the given mounts in display order.
func NewPage(title, source string, mounts []string, refreshPath string) (*Page, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(refreshPath) == "" {
		refreshPath = DefaultRefreshPath
	}
	fragments := make(map[string]template.HTML, len(mounts))
	for _, mount := range mounts {
		fragments[mount] = ""
	}
	return &Page{
		title:       title,
		source:      source,
		refreshPath: refreshPath,
		mounts:      append([]string(nil), mounts...),
		fragments:   fragments,
		layout:      tmpl,
	}, nil
}

// Replace swaps the fragment of a mount. Unknown mounts are appended.
func (p *Page) Replace(mount string, fragment template.HTML) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.fragments[mount]; !ok {
		p.mounts = append(p.mounts, mount)
	}
	p.fragments[mount] = fragment
}

// MarkUpdated records a successful commit.
func (p *Page) MarkUpdated(at time.Time) {
	p.mu.Lock()
	p.updatedAt = at
	p.mu.Unlock()
}

// SetNotice sets the status line shown above the content. An empty string
// clears it.
func (p *Page) SetNotice(notice string) {
	p.mu.Lock()
	p.notice = notice
	p.mu.Unlock()
}

// Fragment returns the current fragment of a mount.
func (p *Page) Fragment(mount string) (template.HTML, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fragment, ok := p.fragments[mount]
	return fragment, ok
}

// UpdatedAt returns the time of the last successful commit.
func (p *Page) UpdatedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.updatedAt
}

// Snapshot copies the page state under one lock.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sections := make([]Section, 0, len(p.mounts))
	for _, mount := range p.mounts {
		sections = append(sections, Section{Mount: mount, Fragment: p.fragments[mount]})
	}
	return Snapshot{
		Title:       p.title,
		Source:      p.source,
		RefreshPath: p.refreshPath,
		Notice:      p.notice,
		UpdatedAt:   p.updatedAt,
		Sections:    sections,
	}
}

// Render writes the full HTML document.
func (p *Page) Render(w io.Writer) error {
	return p.layout.ExecuteTemplate(w, "layout", p.Snapshot())
}
