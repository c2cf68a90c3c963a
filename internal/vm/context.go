package vm

import "github.com/ngeor/gobasic/internal/variant"

// Box is a single mutable variable slot. Passing the same *Box into a
// callee's parameter table (rather than copying the Value it holds) is
// what gives by-reference SUB/FUNCTION arguments their aliasing: a
// write through the callee's parameter name is visible in the caller's
// own variable, because both names resolve to the same Box.
type Box struct {
	V variant.Value
}

// Context is one call's variable scope: the module-level SHARED table
// for contexts[0], or one SUB/FUNCTION activation's locals and
// parameters for every other entry on the interpreter's context stack.
type Context struct {
	Vars map[string]*Box

	// ReturnKey is the resolved storage key a FUNCTION's body assigns to
	// express its result (set only on a FUNCTION's own context), read
	// back by ReturnValue without needing the function's name again.
	ReturnKey string
}

func NewContext() *Context {
	return &Context{Vars: map[string]*Box{}}
}

// box returns name's slot, creating a fresh zero-valued one on first
// reference — the pre-linter/linter guarantee every variable is
// resolved before codegen means this only ever fires for a variable's
// very first store or an implicit-declaration read.
func (c *Context) box(name string) *Box {
	b, ok := c.Vars[name]
	if !ok {
		b = &Box{}
		c.Vars[name] = b
	}
	return b
}
