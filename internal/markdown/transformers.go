package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

const imageStyle = "max-width: 100%; height: auto;"

type imageTransformer struct {
	resolver interfaces.ImageResolver
}

// Transform rewrites image destinations through the resolver and marks
// every image lazy-loaded and width-constrained.
func (t *imageTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		if t.resolver != nil {
			img.Destination = []byte(t.resolver.Resolve(string(img.Destination)))
		}
		img.SetAttributeString("loading", []byte("lazy"))
		img.SetAttributeString("style", []byte(imageStyle))
		return ast.WalkContinue, nil
	})
}

type linkTransformer struct{}

// Transform opens every link in a new browsing context.
func (linkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Link, *ast.AutoLink:
			n.SetAttributeString("target", []byte("_blank"))
			n.SetAttributeString("rel", []byte("noopener"))
		}
		return ast.WalkContinue, nil
	})
}
