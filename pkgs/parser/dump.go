package parser

import (
	"fmt"
	"io"
	"strings"
)

// DumpStatements writes an indented rendering of a statement sequence, for
// the --debug-parse-result output.
func DumpStatements(w io.Writer, stmts []Statement) {
	dumpStatements(w, stmts, 0)
}

func dumpStatements(w io.Writer, stmts []Statement, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, st := range stmts {
		switch s := st.(type) {
		case *Assignment:
			fmt.Fprintf(w, "%s%s %s %s\n", indent, s.Key, s.Op, strings.Join(s.Values, " "))
		case *Conditional:
			fmt.Fprintf(w, "%scondition %q {\n", indent, s.Condition)
			dumpStatements(w, s.Then, depth+1)
			if len(s.Else) > 0 {
				fmt.Fprintf(w, "%s} else {\n", indent)
				dumpStatements(w, s.Else, depth+1)
			}
			fmt.Fprintf(w, "%s}\n", indent)
		case *Include:
			fmt.Fprintf(w, "%sinclude(%s)\n", indent, s.Path)
		case *Load:
			fmt.Fprintf(w, "%sload(%s)\n", indent, s.Name)
		case *Option:
			fmt.Fprintf(w, "%soption(%s)\n", indent, s.Name)
		case *FunctionCall:
			fmt.Fprintf(w, "%scall %s\n", indent, s.Raw)
		}
	}
}
