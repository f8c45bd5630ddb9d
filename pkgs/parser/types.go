package parser

// Op is the update operator of a qmake assignment.
type Op string

const (
	OpSet       Op = "="
	OpAdd       Op = "+="
	OpUniqueAdd Op = "*="
	OpRemove    Op = "-="
)

// Statement is one parsed qmake statement. The set of implementations is
// closed; consumers match exhaustively on the concrete types.
type Statement interface {
	stmtNode()
}

// Assignment is a `key op values` statement.
type Assignment struct {
	Key    string
	Op     Op
	Values []string
	Line   int
}

// Conditional is a `condition: statement` or `condition { ... } [else ...]`
// construct. Condition carries the raw, whitespace-normalized text.
type Conditional struct {
	Condition string
	Then      []Statement
	Else      []Statement
	Line      int
}

// Include is an `include(path)` statement.
type Include struct {
	Path string
	Line int
}

// Load is a `load(name)` statement.
type Load struct {
	Name string
	Line int
}

// Option is an `option(name)` statement.
type Option struct {
	Name string
	Line int
}

// FunctionCall is a bare function call, a `for(...)` loop or a
// `defineTest(name) { ... }` block. It is consumed only for bracket balance;
// Raw keeps the source text for debugging and nothing else is extracted.
type FunctionCall struct {
	Raw  string
	Line int
}

func (*Assignment) stmtNode()   {}
func (*Conditional) stmtNode()  {}
func (*Include) stmtNode()      {}
func (*Load) stmtNode()         {}
func (*Option) stmtNode()       {}
func (*FunctionCall) stmtNode() {}
