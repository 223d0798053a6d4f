package shortcuts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]string
	}{
		{
			name: "object form",
			src: `import { defineConfig } from 'unocss'
export default defineConfig({
  shortcuts: {
    btn: 'px-4 py-2  rounded',
    'btn-primary': "btn bg-blue",
  },
})`,
			want: map[string]string{"btn": "px-4 py-2 rounded", "btn-primary": "btn bg-blue"},
		},
		{
			name: "array form",
			src: "export default {\n" +
				"  shortcuts: [\n" +
				"    { card: 'p-4 shadow' },\n" +
				"    ['icon', `w-6 h-6`],\n" +
				"    [/^m-(\\d+)$/, ([, d]) => `m-${d}`],\n" +
				"  ],\n" +
				"}",
			want: map[string]string{"card": "p-4 shadow", "icon": "w-6 h-6"},
		},
		{
			name: "dynamic values skipped",
			src:  "const x = 'a'\nexport default { shortcuts: { dyn: `p-${x}`, fn: () => 'a', ok: 'm-1' } }",
			want: map[string]string{"ok": "m-1"},
		},
		{
			name: "no shortcuts",
			src:  "export default { rules: [] }",
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(context.Background(), []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseYAML(t *testing.T) {
	got, err := ParseYAML([]byte("shortcuts:\n  btn: px-4 py-2\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"btn": "px-4 py-2"}, got)

	got, err = ParseYAML([]byte("card: p-4 shadow\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"card": "p-4 shadow"}, got)

	_, err = ParseYAML([]byte("- a\n- b\n"))
	assert.Error(t, err)
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	_, err := Find(nested)
	if err == nil {
		t.Skip("a config file exists above the temp dir")
	}
	assert.ErrorIs(t, err, ErrNotFound)

	cfg := filepath.Join(root, "uno.config.ts")
	require.NoError(t, os.WriteFile(cfg, []byte("export default { shortcuts: { btn: 'p-2' } }"), 0o644))

	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, cfg, found)

	got, err := Load(context.Background(), found)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"btn": "p-2"}, got)

	yml := filepath.Join(root, "src", "uno.shortcuts.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("shortcuts:\n  card: p-4\n"), 0o644))
	found, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, yml, found)

	got, err = Load(context.Background(), found)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"card": "p-4"}, got)

	_, err = Load(context.Background(), filepath.Join(root, "missing.ts"))
	assert.Error(t, err)
}
