package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-gitcontent/internal/markdown"
	"github.com/goliatone/go-gitcontent/internal/media"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

func newPreviewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Parse one markdown file and print its metadata and HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.preview(cmd.OutOrStdout(), args[0])
		},
	}
}

func (a *app) preview(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	entry := interfaces.SourceEntry{
		Name: filepath.Base(path),
		Path: filepath.ToSlash(path),
		Type: interfaces.EntryTypeFile,
		Size: int64(len(data)),
	}
	item := markdown.BuildItem("preview", entry, data, time.Now())

	renderer := markdown.NewGoldmarkRenderer(interfaces.ParseOptions{
		Extensions: a.cfg.Markdown.Extensions,
		HardWraps:  a.cfg.Markdown.HardWraps,
		SafeMode:   a.cfg.Markdown.SafeMode,
	}, media.NewResolverFromConfig(a.cfg.Media))
	html, err := renderer.Render(item.Body)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	meta := map[string]any(item.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	printf(w, "# %s\n", item.Title())
	printf(w, "%s---\n%s", encoded, html)
	return nil
}
