package nlq

import (
	"context"
	"sync"

	"github.com/roach88/viewql/internal/iql"
)

// Request is what a Generator is asked to write.
type Request struct {
	Question string
	View     string
	Mode     iql.Mode

	// Catalog lists the operations available in Mode, one per line.
	Catalog string

	// Feedback holds earlier rejected responses for this stage, oldest
	// first.
	Feedback []Attempt
}

// Attempt is one generated IQL text and the reason it was rejected.
type Attempt struct {
	Output string
	Err    error
}

// Generator writes IQL for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StaticGenerator replays scripted responses per mode. Once a script is
// used up its last response repeats; a mode with no script answers "".
//
// Thread-safety: StaticGenerator is safe for concurrent use.
type StaticGenerator struct {
	mu        sync.Mutex
	responses map[iql.Mode][]string
	next      map[iql.Mode]int
	requests  []Request
}

// NewStaticGenerator creates a generator with no scripts.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{
		responses: make(map[iql.Mode][]string),
		next:      make(map[iql.Mode]int),
	}
}

// Script appends responses for mode.
func (g *StaticGenerator) Script(mode iql.Mode, responses ...string) *StaticGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses[mode] = append(g.responses[mode], responses...)
	return g
}

func (g *StaticGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)

	script := g.responses[req.Mode]
	if len(script) == 0 {
		return "", nil
	}
	i := g.next[req.Mode]
	if i >= len(script) {
		return script[len(script)-1], nil
	}
	g.next[req.Mode] = i + 1
	return script[i], nil
}

// Requests returns every request received so far.
func (g *StaticGenerator) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Request(nil), g.requests...)
}
