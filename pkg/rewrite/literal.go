package rewrite

// Literal is the content of one quoted string inside a script expression,
// as byte offsets into the expression.
type Literal struct {
	Start, End int
}

// Literals finds the string literals of a script expression. Template
// literals holding substitutions are skipped, and scanning stops at an
// unterminated quote.
func Literals(expr string) []Literal {
	var out []Literal
	for i := 0; i < len(expr); i++ {
		q := expr[i]
		if q != '"' && q != '\'' && q != '`' {
			continue
		}
		j := i + 1
		interpolated := false
		for ; j < len(expr) && expr[j] != q; j++ {
			switch {
			case expr[j] == '\\':
				j++
			case q == '`' && expr[j] == '$' && j+1 < len(expr) && expr[j+1] == '{':
				interpolated = true
			}
		}
		if j >= len(expr) {
			break
		}
		if !interpolated {
			out = append(out, Literal{Start: i + 1, End: j})
		}
		i = j
	}
	return out
}

// rewriteLiterals rewrites each string literal of expr on its own and
// leaves the rest of the expression as written.
func (e *Engine) rewriteLiterals(expr string) string {
	lits := Literals(expr)
	if len(lits) == 0 {
		return expr
	}
	var b []byte
	last := 0
	for _, l := range lits {
		b = append(b, expr[last:l.Start]...)
		b = append(b, e.Rewrite(expr[l.Start:l.End])...)
		last = l.End
	}
	b = append(b, expr[last:]...)
	return string(b)
}
