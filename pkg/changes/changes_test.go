package changes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCorners68/unot/pkg/locator"
	"github.com/JCorners68/unot/pkg/rewrite"
)

func TestCollect(t *testing.T) {
	e := rewrite.MustNew(rewrite.DefaultOptions())

	tests := []struct {
		name     string
		kind     locator.Kind
		src      string
		contents []string
		want     string
	}{
		{
			name:     "markup class",
			kind:     locator.Markup,
			src:      `<div class="w10 flex1">x</div>`,
			contents: []string{"w-10 flex-1"},
			want:     `<div class="w-10 flex-1">x</div>`,
		},
		{
			name: "template bound and static class",
			kind: locator.Template,
			src: "<template>\n" +
				"  <div :class=\"[x ? 'top10' : 'gapx1', col]\" class=\"maxw100%\"></div>\n" +
				"</template>\n",
			contents: []string{"top-10", "gap-x-1", "max-w-[100%]"},
			want: "<template>\n" +
				"  <div :class=\"[x ? 'top-10' : 'gap-x-1', col]\" class=\"max-w-[100%]\"></div>\n" +
				"</template>\n",
		},
		{
			name:     "jsx className",
			kind:     locator.JSX,
			src:      `const a = <div className={clsx("wh10", active && "pointer")}><b className="w10" /></div>`,
			contents: []string{"w-10 h-10", "cursor-pointer", "w-10"},
			want:     `const a = <div className={clsx("w-10 h-10", active && "cursor-pointer")}><b className="w-10" /></div>`,
		},
		{
			name: "already canonical",
			kind: locator.Markup,
			src:  `<div class="w-10 flex"></div>`,
			want: `<div class="w-10 flex"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(context.Background(), e, tt.kind, tt.src)
			require.NoError(t, err)

			var contents []string
			for _, c := range got {
				contents = append(contents, c.Content)
				assert.Equal(t, c.Original, tt.src[c.Start.Offset:c.End.Offset])
			}
			assert.Equal(t, tt.contents, contents)

			out, err := Apply(tt.src, got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCollect_Positions(t *testing.T) {
	e := rewrite.MustNew(rewrite.DefaultOptions())
	src := "<p>\n  <span class=\"w10\"></span>\n</p>"

	got, err := Collect(context.Background(), e, locator.Markup, src)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Start.Line)
	assert.Equal(t, 15, got[0].Start.Column)
	assert.Equal(t, 2, got[0].End.Line)
	assert.Equal(t, 18, got[0].End.Column)
}

func TestApply(t *testing.T) {
	src := "abcdefghij"
	at := func(s, e int, content string) Change {
		return Change{
			Content: content,
			Start:   locator.Position{Line: 1, Column: s, Offset: s},
			End:     locator.Position{Line: 1, Column: e, Offset: e},
		}
	}

	t.Run("order independent", func(t *testing.T) {
		forward, err := Apply(src, []Change{at(1, 3, "X"), at(5, 6, "YY")})
		require.NoError(t, err)
		backward, err := Apply(src, []Change{at(5, 6, "YY"), at(1, 3, "X")})
		require.NoError(t, err)
		assert.Equal(t, "aXdeYYghij", forward)
		assert.Equal(t, forward, backward)
	})

	t.Run("empty", func(t *testing.T) {
		out, err := Apply(src, nil)
		require.NoError(t, err)
		assert.Equal(t, src, out)
	})

	t.Run("adjacent", func(t *testing.T) {
		out, err := Apply(src, []Change{at(0, 2, "1"), at(2, 4, "2")})
		require.NoError(t, err)
		assert.Equal(t, "12efghij", out)
	})

	t.Run("overlap", func(t *testing.T) {
		_, err := Apply(src, []Change{at(1, 4, "X"), at(3, 5, "Y")})
		assert.ErrorIs(t, err, ErrOverlap)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := Apply(src, []Change{at(8, 20, "X")})
		assert.Error(t, err)
	})
}
