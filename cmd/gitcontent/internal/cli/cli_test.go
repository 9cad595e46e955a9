package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildWritesPageFromLocalSource(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "site", "content", "blog", "hello.md"), `---
title: Hello World
date: 2024-03-01
publish: true
---
Some **bold** text.
`)
	if err := os.MkdirAll(filepath.Join(dir, "site", "content", "images"), 0o755); err != nil {
		t.Fatalf("mkdir images: %v", err)
	}
	target := filepath.Join(dir, "out", "index.html")

	out, err := execute(t, "build",
		"--log-provider", "none",
		"--source", "local",
		"--root", filepath.Join(dir, "site"),
		"--output", target,
	)
	if err != nil {
		t.Fatalf("build: %v (%s)", err, out)
	}
	if strings.TrimSpace(out) != target {
		t.Fatalf("expected written path printed, got %q", out)
	}
	page, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(page), "Hello World") || !strings.Contains(string(page), "<strong>bold</strong>") {
		t.Fatalf("expected rendered post in page, got %s", page)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := execute(t, "build", "--log-provider", "none", "--source", "local"); err == nil {
		t.Fatal("expected error when local root is missing")
	}
}

func TestPreviewPrintsMetadataAndHTML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "post.md")
	writeFile(t, file, `---
title: Draft
image: cover.png
---
# Heading
`)

	out, err := execute(t, "preview", "--log-provider", "none", file)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.HasPrefix(out, "# Draft\n") {
		t.Fatalf("expected title header, got %q", out)
	}
	if !strings.Contains(out, "title: Draft") || !strings.Contains(out, "\n---\n") {
		t.Fatalf("expected yaml metadata block, got %q", out)
	}
	if !strings.Contains(out, "<h1") {
		t.Fatalf("expected rendered heading, got %q", out)
	}
}

func TestPreviewRequiresFile(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := execute(t, "preview", "--log-provider", "none"); err == nil {
		t.Fatal("expected argument error")
	}
}
