package template

import (
	mathrand "math/rand/v2"

	"github.com/google/uuid"
)

// Context holds the data available to template expressions.
type Context struct {
	// OperationName is the name of the dispatched operation.
	OperationName string

	// Vars are the operation variables.
	Vars map[string]any

	// Rand, when set, is the source of every random value.
	Rand *mathrand.Rand
}

// NewContext creates a context for an operation.
func NewContext(operationName string, vars map[string]any) *Context {
	if vars == nil {
		vars = map[string]any{}
	}
	return &Context{OperationName: operationName, Vars: vars}
}

// WithSeed returns a copy of c whose random values are drawn from a PRNG
// seeded with seed.
func (c *Context) WithSeed(seed uint64) *Context {
	next := *c
	next.Rand = mathrand.New(mathrand.NewPCG(seed, seed))
	return &next
}

// The methods below accept a nil receiver and fall back to the global source.

func (c *Context) intN(n int) int {
	switch {
	case n <= 0:
		return 0
	case c != nil && c.Rand != nil:
		return c.Rand.IntN(n)
	default:
		return mathrand.IntN(n)
	}
}

func (c *Context) float64() float64 {
	if c != nil && c.Rand != nil {
		return c.Rand.Float64()
	}
	return mathrand.Float64()
}

func (c *Context) pick(values []string) string {
	return values[c.intN(len(values))]
}

// uuid returns a version 4 UUID, reproducible under a seeded Rand.
func (c *Context) uuid() string {
	if c == nil || c.Rand == nil {
		return uuid.NewString()
	}
	var id uuid.UUID
	for i := range id {
		id[i] = byte(c.Rand.Uint32())
	}
	id[6] = id[6]&0x0f | 0x40
	id[8] = id[8]&0x3f | 0x80
	return id.String()
}

