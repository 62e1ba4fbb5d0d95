// Package ast defines the shape of the configuration AST this supervisor
// consumes. Producing this tree — lexing and parsing the interfaces and
// statements text a configuration file contains — is out of scope for this
// repo: this package has no parser, only the data contract a parser is
// expected to hand us.
package ast

// Config is the parsed form of one configuration file: an unordered set of
// named interfaces, each of which becomes one supervised Process.
type Config struct {
	Interfaces []Interface `json:"interfaces"`
}

// Interface is one process definition: a name and its ordered statements.
type Interface struct {
	Name       string      `json:"name"`
	Statements []Statement `json:"statements"`
}

// Statement is one parsed statement: a dotted module reference, an ordered
// argument list, and an optional exported name.
//
// Names holds the dot-separated components of the module reference (e.g.
// ["net", "up"] for "net.up(...)"); they're concatenated into a single
// module type string before registry lookup.
type Statement struct {
	Names []string `json:"names"`
	Args  []Arg    `json:"args"`
	Name  string   `json:"name,omitempty"` // exported name; empty if the statement exports nothing
}

// ArgKind distinguishes the two argument variants a statement may carry.
type ArgKind int

const (
	// ArgLiteral holds a quoted string literal.
	ArgLiteral ArgKind = iota
	// ArgVarRef holds a dotted variable reference, "modname.varname...".
	ArgVarRef
)

// Arg is one element of a statement's argument list. Only the fields that
// match Kind are meaningful — Go has no tagged union, so this is the same
// Kind-plus-payload shape a hand-rolled recursive-descent parser would emit.
type Arg struct {
	Kind ArgKind `json:"kind"`

	// Literal is valid when Kind == ArgLiteral.
	Literal string `json:"literal,omitempty"`

	// ModName and VarName are valid when Kind == ArgVarRef. VarName may be
	// empty, meaning "the bare module reference".
	ModName string `json:"mod_name,omitempty"`
	VarName string `json:"var_name,omitempty"`
}
