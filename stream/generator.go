package stream

import (
	"fmt"

	fixdsp "github.com/streamdsp/go-fixdsp"
)

// Generator drives a fixed token sequence onto its Out port, one token
// per tick as long as the consumer is ready. It is mainly used to feed
// cores in tests and tools.
//
// Ports: Start (input strobe) begins a pass over the sequence; Done
// (output strobe) pulses for one tick when the last token has been
// accepted. Out holds each token stable until the consumer takes it.
type Generator struct {
	Start bool
	Done  bool
	Out   Port

	tokens []Token
	pos    int
	active bool
}

// NewGenerator creates a generator for the given token sequence.
func NewGenerator(tokens []Token) (*Generator, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: generator needs at least one token", fixdsp.ErrInvalidConfig)
	}
	seq := make([]Token, len(tokens))
	copy(seq, tokens)
	return &Generator{tokens: seq}, nil
}

// Tick advances the generator by one clock.
func (g *Generator) Tick() {
	g.Done = false

	if g.active && g.Out.Fires() {
		g.pos++
		if g.pos == len(g.tokens) {
			g.Out.Clear()
			g.active = false
			g.Done = true
		} else {
			g.Out.Put(g.tokens[g.pos])
		}
	}

	if !g.active && g.Start {
		g.active = true
		g.pos = 0
		g.Out.Put(g.tokens[0])
	}
}

// Active reports whether a pass over the sequence is in progress.
func (g *Generator) Active() bool { return g.active }
