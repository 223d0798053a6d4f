package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
.w-10{width:2.5rem}
.hover\:bg-red:hover{background-color:red}
.w-\[10px\]{width:10px}
.a,.b>.c{color:blue}
@media (min-width:640px){.sm\:flex{display:flex}}
.\!p-2{padding:0.5rem!important}
.\32 xl\:text-3xl{font-size:1.875rem}
.p-1{padding:1px}
.m-1{margin:1px}
@keyframes spin{from{transform:rotate(0)}to{transform:rotate(360deg)}}
.animate-spin{animation:spin 1s linear infinite}
.broken{color red;width:1px}
`

func mustParse(t *testing.T) *Stylesheet {
	t.Helper()
	s, err := ParseStylesheet(strings.NewReader(fixture))
	require.NoError(t, err)
	return s
}

func TestStylesheet_Generate(t *testing.T) {
	s := mustParse(t)

	tests := []struct {
		token string
		want  string
	}{
		{"w-10", ".w-10 {\n  width: 2.5rem;\n}"},
		{"hover:bg-red", ".hover\\:bg-red:hover {\n  background-color: red;\n}"},
		{"w-[10px]", ".w-\\[10px\\] {\n  width: 10px;\n}"},
		{"a", ".a {\n  color: blue;\n}"},
		{"c", ".b>.c {\n  color: blue;\n}"},
		{"sm:flex", "@media (min-width:640px) {\n  .sm\\:flex {\n    display: flex;\n  }\n}"},
		{"!p-2", ".\\!p-2 {\n  padding: 0.5rem !important;\n}"},
		{"2xl:text-3xl", ".\\32 xl\\:text-3xl {\n  font-size: 1.875rem;\n}"},
		{"animate-spin", ".animate-spin {\n  animation: spin 1s linear infinite;\n}"},
		{"broken", ".broken {\n  width: 1px;\n}"},
		{"b", ""},
		{"nope", ""},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := s.Generate(context.Background(), tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStylesheet_Shortcuts(t *testing.T) {
	s := mustParse(t)
	s.SetShortcuts(map[string]string{
		"btn":  "w-10 hover:bg-red",
		"pm":   "p-1 m-1",
		"wrap": "pm",
		"loop": "loop",
	})

	got, err := s.Generate(context.Background(), "btn")
	require.NoError(t, err)
	assert.Equal(t, ".btn {\n  width: 2.5rem;\n}\n.btn:hover {\n  background-color: red;\n}", got)

	got, err = s.Generate(context.Background(), "pm")
	require.NoError(t, err)
	assert.Equal(t, ".pm {\n  padding: 1px;\n  margin: 1px;\n}", got)

	got, err = s.Generate(context.Background(), "wrap")
	require.NoError(t, err)
	assert.Equal(t, ".wrap {\n  padding: 1px;\n  margin: 1px;\n}", got)

	got, err = s.Generate(context.Background(), "loop")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.True(t, s.Has("btn"))
	assert.True(t, s.Has("w-10"))
	assert.False(t, s.Has("btn2"))
}

func TestStylesheet_Classes(t *testing.T) {
	s := mustParse(t)
	classes := s.Classes()
	require.NotEmpty(t, classes)
	assert.Equal(t, "w-10", classes[0])
	assert.Contains(t, classes, "2xl:text-3xl")
	assert.NotContains(t, classes, "b")
}

func TestUnescapeClass(t *testing.T) {
	assert.Equal(t, "hover:bg-red", unescapeClass(`hover\:bg-red`))
	assert.Equal(t, "2xl:x", unescapeClass(`\32 xl\:x`))
	assert.Equal(t, "w-1/2", unescapeClass(`w-1\/2`))
	assert.Equal(t, "plain", unescapeClass("plain"))
}

func TestEscapeClass(t *testing.T) {
	assert.Equal(t, `hover\:bg-\[\#fff\]`, escapeClass("hover:bg-[#fff]"))
	assert.Equal(t, `\32 xl`, escapeClass("2xl"))
	assert.Equal(t, "2xl", unescapeClass(escapeClass("2xl")))
}

func TestLoadStylesheets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.css"), []byte(".x{color:red}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.css"), []byte(".y{color:blue}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(".z{color:green}"), 0o644))

	s, err := LoadStylesheets(dir)
	require.NoError(t, err)
	assert.True(t, s.Has("x"))
	assert.True(t, s.Has("y"))
	assert.False(t, s.Has("z"))

	s, err = LoadStylesheets(filepath.Join(dir, "a.css"), filepath.Join(dir, "missing.css"))
	assert.Error(t, err)
	require.NotNil(t, s)
	assert.True(t, s.Has("x"))

	_, err = LoadStylesheets()
	assert.ErrorIs(t, err, ErrNoStylesheet)
}

func TestCached(t *testing.T) {
	var calls atomic.Int32
	gen := Func(func(_ context.Context, token string) (string, error) {
		calls.Add(1)
		switch token {
		case "bad":
			return "", errors.New("boom")
		case "unknown":
			return "", nil
		}
		return "." + token + " {}", nil
	})
	c := NewCached(gen, 2, zerolog.Nop())
	ctx := context.Background()

	got, err := c.Generate(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ".a {}", got)
	_, _ = c.Generate(ctx, "a")
	assert.Equal(t, int32(1), calls.Load())

	_, _ = c.Generate(ctx, "unknown")
	_, _ = c.Generate(ctx, "unknown")
	assert.Equal(t, int32(3), calls.Load())
	assert.False(t, c.Has("unknown"))

	_, err = c.Generate(ctx, "bad")
	assert.Error(t, err)
	_, err = c.Generate(ctx, "bad")
	assert.Error(t, err)
	assert.Equal(t, int32(5), calls.Load())
	assert.False(t, c.Has("bad"))

	c.Clear()
	assert.False(t, c.Has("a"))
	size, hits, misses := c.Stats()
	assert.Equal(t, 0, size)
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(5), misses)
}

func TestCached_SharesConcurrentLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	gen := Func(func(_ context.Context, token string) (string, error) {
		calls.Add(1)
		<-release
		return ".x {}", nil
	})
	c := NewCached(gen, 10, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Generate(context.Background(), "x")
		}(i)
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, ".x {}", r)
	}
}

func TestCached_Warm(t *testing.T) {
	s := mustParse(t)
	c := NewCached(s, 100, zerolog.Nop())

	require.NoError(t, c.Warm(context.Background(), []string{"w-10", "sm:flex", "nope"}))
	assert.True(t, c.Has("w-10"))
	assert.True(t, c.Has("sm:flex"))
	assert.False(t, c.Has("nope"))

	failing := NewCached(Func(func(context.Context, string) (string, error) {
		return "", errors.New("down")
	}), 10, zerolog.Nop())
	assert.Error(t, failing.Warm(context.Background(), []string{"a", "b"}))
}
