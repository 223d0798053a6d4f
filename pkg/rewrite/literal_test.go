package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiterals(t *testing.T) {
	expr := "'a' + \"b\\\"c\" + `x${y}` + `z` + 'open"
	var got []string
	for _, l := range Literals(expr) {
		got = append(got, expr[l.Start:l.End])
	}
	assert.Equal(t, []string{"a", `b\"c`, "z"}, got)
}

func TestRewriteLiterals(t *testing.T) {
	e := MustNew(DefaultOptions())

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"ternary", "isOpen ? 'w10' : line3", "isOpen ? 'w-10' : line3"},
		{"object keys untouched", "{ pointer: cover, 'p10': on }", "{ pointer: cover, 'p-10': on }"},
		{"no literals", "classes", "classes"},
		{"template with substitution", "`w10 ${x}`", "`w10 ${x}`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.rewriteLiterals(tt.expr))
		})
	}
}
