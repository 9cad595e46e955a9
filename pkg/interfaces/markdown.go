package interfaces

// MarkdownRenderer converts a markdown body into an HTML fragment. Empty
// input yields an empty fragment. Implementations must be safe for concurrent
// use since every collection render shares a single instance.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// ImageResolver maps an image reference found in content into a URL the
// browser can load.
type ImageResolver interface {
	Resolve(ref string) string
}

// ParseOptions customises Markdown rendering, keeping option names readable
// for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	// SafeMode drops raw HTML from bodies instead of passing it through.
	SafeMode bool
}
