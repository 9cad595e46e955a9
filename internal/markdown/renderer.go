package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// GoldmarkRenderer implements interfaces.MarkdownRenderer. The engine is
// built once and shared; goldmark keeps per-conversion state in the parser
// context so concurrent Render calls are safe.
type GoldmarkRenderer struct {
	engine goldmark.Markdown
}

var _ interfaces.MarkdownRenderer = (*GoldmarkRenderer)(nil)

// NewGoldmarkRenderer builds a renderer. Bodies are author-trusted, so raw
// HTML passes through unless SafeMode is set. A nil resolver leaves image
// destinations untouched.
func NewGoldmarkRenderer(opts interfaces.ParseOptions, resolver interfaces.ImageResolver) *GoldmarkRenderer {
	return &GoldmarkRenderer{engine: newGoldmarkEngine(opts, resolver)}
}

// Render converts markdown into an HTML fragment.
func (r *GoldmarkRenderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

func newGoldmarkEngine(opts interfaces.ParseOptions, resolver interfaces.ImageResolver) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)
	exts = append(exts, &presentation{resolver: resolver})

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithExtensions(exts...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// collectExtensions maps configured names onto goldmark extenders. Unknown
// names are ignored; an empty list means GFM.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

// presentation registers the AST transformers that shape rendered output.
type presentation struct {
	resolver interfaces.ImageResolver
}

func (p *presentation) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&imageTransformer{resolver: p.resolver}, 100),
		util.Prioritized(&linkTransformer{}, 100),
	))
}
