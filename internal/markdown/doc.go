// Package markdown turns raw content files into items and renders item
// bodies to HTML. Front matter uses a deliberately small line-oriented
// key: value dialect rather than YAML; bodies go through goldmark with AST
// transformers that route image references through the image resolver.
package markdown
