package page

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-gitcontent/internal/content"
	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/internal/media"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

//go:embed templates/*.html
var templateFS embed.FS

// Placeholder texts.
const (
	MessageNoPosts          = "No posts found yet"
	MessageNoPublishedPosts = "No published posts found"
	MessageNoImages         = "No images found yet"
	hintPublish             = "Make sure the publish: true field is set in your post's front matter."
)

// DateLayout is the display format for parsed dates.
const DateLayout = "January 2, 2006 at 03:04 PM"

// DefaultRefreshPath is where the refresh and retry controls post.
const DefaultRefreshPath = "/refresh"

// Renderer turns collection items into HTML fragments.
type Renderer struct {
	markdown    interfaces.MarkdownRenderer
	resolver    *media.Resolver
	templates   *template.Template
	refreshPath string
	logger      interfaces.Logger
}

// RendererOption customises a Renderer.
type RendererOption func(*Renderer)

// WithRendererLogger attaches a logger.
func WithRendererLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRefreshPath overrides the path used by the retry control.
func WithRefreshPath(path string) RendererOption {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			r.refreshPath = trimmed
		}
	}
}

// NewRenderer parses the embedded templates.
func NewRenderer(markdown interfaces.MarkdownRenderer, resolver *media.Resolver, opts ...RendererOption) (*Renderer, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		markdown:    markdown,
		resolver:    resolver,
		templates:   tmpl,
		refreshPath: DefaultRefreshPath,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.resolver == nil {
		r.resolver = media.NewResolver("")
	}
	return r, nil
}

func parseTemplates() (*template.Template, error) {
	return template.New("gitcontent").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string { return t.Format(DateLayout) },
	}).ParseFS(templateFS, "templates/*.html")
}

// RefreshPath returns the path targeted by refresh controls.
func (r *Renderer) RefreshPath() string {
	return r.refreshPath
}

// RenderCollection filters, sorts and renders items for their collection.
func (r *Renderer) RenderCollection(collection content.Collection, items []*content.Item) (template.HTML, error) {
	visible := collection.Prepare(items)
	if collection.Kind == content.KindImages {
		if len(visible) == 0 {
			return r.placeholder(MessageNoImages, "")
		}
		return r.execute("images", r.imageViews(visible))
	}
	if len(items) == 0 {
		return r.placeholder(MessageNoPosts, "")
	}
	if len(visible) == 0 {
		return r.placeholder(MessageNoPublishedPosts, hintPublish)
	}
	return r.execute("posts", r.postViews(visible))
}

// Loading renders the in-progress state naming the content source.
func (r *Renderer) Loading(source string) template.HTML {
	out, err := r.execute("loading", source)
	if err != nil {
		return template.HTML("<p>Loading&hellip;</p>")
	}
	return out
}

// ErrorPanel renders a load failure with a retry control.
func (r *Renderer) ErrorPanel(source string, loadErr error) template.HTML {
	message := "unknown error"
	if loadErr != nil {
		message = loadErr.Error()
	}
	out, err := r.execute("error", map[string]string{
		"Message":   message,
		"Source":    source,
		"RetryPath": r.refreshPath,
	})
	if err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(message) + "</p>")
	}
	return out
}

func (r *Renderer) placeholder(message, hint string) (template.HTML, error) {
	return r.execute("placeholder", map[string]string{"Message": message, "Hint": hint})
}

func (r *Renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type postView struct {
	Slug     string
	Anchor   string
	Title    string
	Date     string
	DateTime string
	Filename string
	Body     template.HTML
}

type imageView struct {
	Slug        string
	Anchor      string
	Title       string
	Date        string
	Filename    string
	Src         string
	Alt         string
	Description template.HTML
	ImageType   string
	Image       string
	UploadImage string
	ExternalURL string
}

func (r *Renderer) postViews(items []*content.Item) []postView {
	views := make([]postView, 0, len(items))
	for _, item := range items {
		view := postView{
			Slug:     item.Slug,
			Anchor:   anchor(item.Slug),
			Title:    item.Title(),
			Date:     FormatDate(item.RawDate()),
			Filename: item.Filename,
			Body:     r.renderMarkdown(item, item.Body),
		}
		if parsed, ok := item.Date(); ok {
			view.DateTime = parsed.Format(time.RFC3339)
		}
		views = append(views, view)
	}
	return views
}

func (r *Renderer) imageViews(items []*content.Item) []imageView {
	views := make([]imageView, 0, len(items))
	for _, item := range items {
		meta := item.Metadata
		views = append(views, imageView{
			Slug:        item.Slug,
			Anchor:      anchor(item.Slug),
			Title:       item.Title(),
			Date:        FormatDate(item.RawDate()),
			Filename:    item.Filename,
			Src:         r.resolver.ImageSource(meta),
			Alt:         media.AltText(meta),
			Description: r.renderMarkdown(item, meta.String(content.KeyDescription)),
			ImageType:   meta.String(content.KeyImageType),
			Image:       meta.String(content.KeyImage),
			UploadImage: meta.String(content.KeyUploadImage),
			ExternalURL: meta.String(content.KeyExternalURL),
		})
	}
	return views
}

// renderMarkdown trusts renderer output: bodies come from repository
// authors. A render failure degrades to escaped text.
func (r *Renderer) renderMarkdown(item *content.Item, body string) template.HTML {
	if r.markdown == nil || strings.TrimSpace(body) == "" {
		return ""
	}
	html, err := r.markdown.Render(body)
	if err != nil {
		logging.WithCollectionContext(r.logger, item.Collection, item.Path, item.SHA).
			Warn("page.markdown.render_failed", "error", err)
		return template.HTML("<pre>" + template.HTMLEscapeString(body) + "</pre>")
	}
	return template.HTML(html)
}

// FormatDate renders a front matter date for display. Unparsable dates are
// returned as written.
func FormatDate(raw string) string {
	if parsed, ok := content.ParseDate(raw); ok {
		return parsed.Format(DateLayout)
	}
	return strings.TrimSpace(raw)
}

func anchor(value string) string {
	if normalized, err := slug.Normalize(value); err == nil && normalized != "" {
		return normalized
	}
	return value
}
