package linter

import (
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/prelint"
	"github.com/ngeor/gobasic/internal/variant"
)

// LabelRef is one GOTO/GOSUB/ON ERROR GOTO/RESUME <label> reference
// seen while walking a scope, queued for validation once every label
// declared in that same scope is known.
type LabelRef struct {
	Name   string
	At     diag.Pos
	Global bool // ON ERROR GOTO and RESUME <label> target the global label space
}

// VarInfo is one scope entry: a resolved variable's type, its
// shared/redim markers, and (for extended names) the fact that it
// reserves the bare part exclusively.
type VarInfo struct {
	Name     string
	Kind     variant.Kind
	TypeName string // set when Kind == KindRecord
	Extended bool   // declared via "AS type" rather than a compact suffix
	Shared   bool
	Redim    bool
	Dims     []variant.Dim
	IsArray  bool
	IsParam  bool
	ByVal    bool
}

// Context tracks one scope's resolution state: the default-type map
// (shared across the whole program — DEFINT/DEFLNG/etc are a global
// setting in QBasic, not per-subprogram), the names defined so far in
// this scope, this scope's constants, the enclosing scope's constants
// (the global consts, visible but not shadowed into), the set of
// declared labels, and a reference to the pre-linter's signature maps.
type Context struct {
	Defaults     *variant.DefaultTypeMap
	Vars         map[string]*VarInfo
	Consts       map[string]variant.Value
	ParentConsts map[string]variant.Value
	Labels       map[string]diag.Pos // case-folded name -> the label's own position
	LabelRefs    []LabelRef           // GOTO/GOSUB/ON ERROR GOTO/RESUME targets seen so far
	IsGlobal     bool
	SubName      string // "" at global scope
	InFunction   bool
	InSub        bool
	ForStack     []string // names of enclosing FOR counters, innermost last
	Pre          *prelint.Result
}

func NewGlobalContext(defaults *variant.DefaultTypeMap, pre *prelint.Result) *Context {
	return &Context{
		Defaults: defaults,
		Vars:     map[string]*VarInfo{},
		Consts:   map[string]variant.Value{},
		Labels:   map[string]diag.Pos{},
		IsGlobal: true,
		Pre:      pre,
	}
}

func (c *Context) NewChildScope(subName string) *Context {
	return &Context{
		Defaults:     c.Defaults,
		Vars:         map[string]*VarInfo{},
		Consts:       map[string]variant.Value{},
		ParentConsts: c.Consts,
		Labels:       map[string]diag.Pos{},
		IsGlobal:     false,
		SubName:      subName,
		Pre:          c.Pre,
	}
}

// LookupConst resolves a constant through the local-then-enclosing
// chain, per spec.md §4.C rule 4: "looks up in the enclosing constant
// chain first".
func (c *Context) LookupConst(fold func(string) string, name string) (variant.Value, bool) {
	key := fold(name)
	if v, ok := c.Consts[key]; ok {
		return v, true
	}
	if v, ok := c.ParentConsts[key]; ok {
		return v, true
	}
	return nil, false
}

func (c *Context) LookupVar(key string) (*VarInfo, bool) {
	v, ok := c.Vars[key]
	return v, ok
}

// DefineVar stores vi under key, the same case-folded-name-plus-
// qualifier key convertName/convertIndexOrCall look variables up by
// (see resolveKey in internal/linter/expr.go) — compact names with
// different suffixes (A%, A$) are distinct variables and must not
// collide in this map.
func (c *Context) DefineVar(key string, vi *VarInfo) {
	c.Vars[key] = vi
}
