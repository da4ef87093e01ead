package parser

import (
	"fmt"

	"github.com/raymyers/cformat/pkg/lexer"
)

// lookahead is the number of tokens the parser can see, the current one
// included.
const lookahead = 4

// ring is a fixed buffer of the next lookahead tokens
type ring struct {
	l    *lexer.Lexer
	toks [lookahead]lexer.Token
	head int
}

func newRing(l *lexer.Lexer) *ring {
	r := &ring{l: l}
	for i := range r.toks {
		r.toks[i] = l.NextToken()
	}
	return r
}

// peek returns the token k positions ahead, 0 being the current token
func (r *ring) peek(k int) lexer.Token {
	if k < 0 || k >= lookahead {
		panic(fmt.Sprintf("parser: lookahead %d out of range", k))
	}
	return r.toks[(r.head+k)%lookahead]
}

// advance drops the current token and reads one more
func (r *ring) advance() {
	r.toks[r.head] = r.l.NextToken()
	r.head = (r.head + 1) % lookahead
}
