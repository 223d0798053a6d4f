// Package srcscan finds source files and harvests class tokens from them.
// This is a string-literal harvesting approach, not framework parsing.
package srcscan

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"
)

// DefaultExtensions are the file extensions to scan by default.
var DefaultExtensions = []string{
	".html", ".htm", ".js", ".ts", ".jsx", ".tsx", ".astro", ".vue", ".svelte", ".md", ".mdx",
}

// DefaultExcludes are directories to exclude by default.
var DefaultExcludes = []string{
	"node_modules", "dist", ".next", "build", ".git", ".svelte-kit", ".nuxt",
}

// classTokenRegex matches valid class tokens, shorthand forms included
// (bg#fff, hover:(a b) parts, w10!).
var classTokenRegex = regexp.MustCompile(`^[A-Za-z0-9:_\-\[\]/#%.!(),]+$`)

var (
	// class="..." or className="..." (double or single quotes)
	classAttrRegex = regexp.MustCompile(`(?:class|className)\s*=\s*["']([^"']+)["']`)

	// clsx("..."), classnames("..."), twMerge("..."), cva("...")
	// Only captures string literal arguments
	helperRegex = regexp.MustCompile(`(?:clsx|classnames|twMerge|cva|cn)\s*\(\s*["']([^"']+)["']`)
)

// Options configures source scanning behavior.
type Options struct {
	Extensions []string // File extensions to scan (e.g., ".tsx")
	// Excludes are directory names ("node_modules") or doublestar globs
	// matched against slash separated paths relative to the scan root
	// ("**/*.test.tsx", "legacy/**").
	Excludes []string
}

// DefaultOptions returns the default scanning options.
func DefaultOptions() Options {
	return Options{
		Extensions: DefaultExtensions,
		Excludes:   DefaultExcludes,
	}
}

// Scanner walks source trees.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Excludes == nil {
		opts.Excludes = DefaultExcludes
	}
	opts.Extensions = NormalizeExtensions(opts.Extensions)
	return &Scanner{opts: opts}
}

// ScanPaths expands files and directories into the sorted list of source
// files to process. Missing paths are reported together; the rest are
// still scanned.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var errs error

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !info.IsDir() {
			seen[path] = struct{}{}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // Skip unreadable entries
			}
			rel, relErr := filepath.Rel(path, p)
			if relErr != nil || rel == "." {
				return nil
			}
			if s.excluded(filepath.ToSlash(rel), d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && s.hasExt(p) {
				seen[p] = struct{}{}
			}
			return nil
		})
		errs = multierr.Append(errs, err)
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, errs
}

func (s *Scanner) excluded(rel, name string) bool {
	for _, pattern := range s.opts.Excludes {
		if !strings.ContainsAny(pattern, "*?[{") {
			if name == pattern || rel == pattern {
				return true
			}
			continue
		}
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Scanner) hasExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range s.opts.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Tokens harvests the class tokens of one source file.
func (s *Scanner) Tokens(path string) ([]string, error) {
	classes, err := s.scanFile(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	out := make([]string, 0, len(classes))
	for c := range classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// scanFile extracts class tokens from a single source file.
func (s *Scanner) scanFile(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	classes := make(map[string]struct{})
	scanner := bufio.NewScanner(f)

	// Increase buffer for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024) // 1MB max line

	for scanner.Scan() {
		line := scanner.Text()
		for _, re := range []*regexp.Regexp{classAttrRegex, helperRegex} {
			for _, match := range re.FindAllStringSubmatch(line, -1) {
				// Skip if the captured value contains interpolation markers
				if strings.Contains(match[1], "${") || strings.Contains(match[1], "` +") {
					continue
				}
				extractTokens(match[1], classes)
			}
		}
	}

	return classes, scanner.Err()
}

// extractTokens splits a class string and adds valid tokens to the set.
func extractTokens(s string, classes map[string]struct{}) {
	for _, token := range strings.Fields(s) {
		// Skip tokens that are too long (sanity limit)
		if len(token) > 128 {
			continue
		}
		if !classTokenRegex.MatchString(token) {
			continue
		}
		classes[token] = struct{}{}
	}
}

// NormalizeExtensions lowercases extensions and adds missing leading dots.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
