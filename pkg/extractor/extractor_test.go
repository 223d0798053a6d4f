package extractor

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name:     "basic classes",
			html:     `<div class="flex items-center">Hello</div>`,
			expected: []string{"flex", "items-center"},
		},
		{
			name:     "variants and arbitrary values",
			html:     `<div class="sm:flex w-[200px] bg-[#ff0000] -mt-4">x</div>`,
			expected: []string{"-mt-4", "bg-[#ff0000]", "sm:flex", "w-[200px]"},
		},
		{
			name:     "attributify",
			html:     `<button bg="blue-400 hover:blue-500" text="~ sm" border>Go</button>`,
			expected: []string{"bg-blue-400", "border", "hover:bg-blue-500", "text", "text-sm"},
		},
		{
			name:     "plain and bound attributes skipped",
			html:     `<a href="/x" id="top" style="color: red" data-x="1" :p="a" @click="go" v-if="ok" onclick="f()" class="p-2">x</a>`,
			expected: []string{"p-2"},
		},
		{
			name:     "natural order",
			html:     `<div class="p-10 p-2 p-1"></div>`,
			expected: []string{"p-1", "p-2", "p-10"},
		},
		{
			name:     "empty class",
			html:     `<div class="">Empty</div><div class="  ">Whitespace</div>`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokens(strings.NewReader(tt.html))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokens() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFromDir(t *testing.T) {
	tmpDir := t.TempDir()

	index := `<!DOCTYPE html><html><body><div class="container mx-auto">Index</div></body></html>`
	if err := os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatal(err)
	}

	component := `<template><section class="py-8 bg-gray-100">About</section></template>`
	if err := os.WriteFile(filepath.Join(tmpDir, "About.vue"), []byte(component), 0644); err != nil {
		t.Fatal(err)
	}

	subDir := filepath.Join(tmpDir, "pages")
	if err := os.Mkdir(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	nested := `<article class="prose max-w-none">Nested</article>`
	if err := os.WriteFile(filepath.Join(subDir, "article.html"), []byte(nested), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(subDir, "notes.txt"), []byte(`<p class="ignored"></p>`), 0644); err != nil {
		t.Fatal(err)
	}

	tokens, err := FromDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]bool)
	for _, tok := range tokens {
		got[tok] = true
	}
	for _, exp := range []string{"container", "mx-auto", "py-8", "bg-gray-100", "prose", "max-w-none"} {
		if !got[exp] {
			t.Errorf("expected token %q not found", exp)
		}
	}
	if got["ignored"] {
		t.Error("non-markup file was read")
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("expected error for missing file")
	}
}
