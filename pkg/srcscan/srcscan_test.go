package srcscan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple classes",
			input:    "flex space-y-2 md:hover:bg-red-500",
			expected: []string{"flex", "space-y-2", "md:hover:bg-red-500"},
		},
		{
			name:     "arbitrary values",
			input:    "w-[100px] bg-[#ff0000] text-[14px]",
			expected: []string{"w-[100px]", "bg-[#ff0000]", "text-[14px]"},
		},
		{
			name:     "shorthand forms",
			input:    "w10 bg#fff whfull! hover:(a",
			expected: []string{"w10", "bg#fff", "whfull!", "hover:(a"},
		},
		{
			name:     "skip long tokens",
			input:    "flex " + string(make([]byte, 150)),
			expected: []string{"flex"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes := make(map[string]struct{})
			extractTokens(tt.input, classes)

			for _, exp := range tt.expected {
				if _, ok := classes[exp]; !ok {
					t.Errorf("expected token %q not found", exp)
				}
			}

			if len(classes) != len(tt.expected) {
				t.Errorf("got %d tokens, expected %d", len(classes), len(tt.expected))
			}
		})
	}
}

func TestTokens_TSX(t *testing.T) {
	content := `
import React from 'react';

export function Button() {
  return (
    <button className="flex space-y-2 md:hover:bg-red-500">
      Click me
    </button>
  );
}

export function Card() {
  const cls = clsx("a b", condition && "c");
  return <div class="p-4 rounded-lg shadow">{children}</div>;
}
`
	tmpFile := filepath.Join(t.TempDir(), "test.tsx")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	tokens, err := New(DefaultOptions()).Tokens(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "flex", "md:hover:bg-red-500", "p-4", "rounded-lg", "shadow", "space-y-2"}, tokens)
}

func TestTokens_SkipsTemplateLiterals(t *testing.T) {
	content := "const dynamic = `flex ${condition ? 'hidden' : 'block'}`;\n" +
		"const safe = className=\"static-class\";\n"
	tmpFile := filepath.Join(t.TempDir(), "test.ts")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	tokens, err := New(DefaultOptions()).Tokens(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"static-class"}, tokens)
}

func TestScanPaths(t *testing.T) {
	root := t.TempDir()
	write := func(rel string) string {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(`<div class="x">`), 0644))
		return p
	}
	app := write("src/app.tsx")
	page := write("src/pages/Index.vue")
	write("src/app.test.tsx")
	write("src/readme.txt")
	write("node_modules/lib/index.js")
	write("legacy/old.tsx")

	s := New(Options{Excludes: append([]string{"**/*.test.tsx", "legacy/**"}, DefaultExcludes...)})
	files, err := s.ScanPaths([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{app, page}, files)

	files, err = s.ScanPaths([]string{app, filepath.Join(root, "missing")})
	assert.Error(t, err)
	assert.Equal(t, []string{app}, files)

	files, err = s.ScanPaths(nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestNormalizeExtensions(t *testing.T) {
	assert.Equal(t, []string{".js", ".ts"}, NormalizeExtensions([]string{"js", ".TS"}))
	assert.Equal(t, []string{".jsx", ".tsx"}, NormalizeExtensions([]string{" .jsx ", "", ".tsx"}))
}
