package scope

import (
	"strings"

	"github.com/promake/pro2cmake/pkgs/errors"
	"github.com/promake/pro2cmake/pkgs/parser"
)

// pathKeys lists the keys whose values are filesystem paths and go through
// MapToFile at construction time.
var pathKeys = map[string]bool{
	"HEADERS":     true,
	"SOURCES":     true,
	"INCLUDEPATH": true,
	"RESOURCES":   true,
}

func isPathKey(key string) bool {
	return pathKeys[key] ||
		strings.HasSuffix(key, "_HEADERS") ||
		strings.HasSuffix(key, "_SOURCES")
}

// FromStatements builds a scope tree from a parsed statement sequence. A nil
// parent makes the result a file root; conditional branches become child
// scopes, with else branches recorded under the literal condition "else".
func FromStatements(parent *Scope, file string, stmts []parser.Statement, cond, baseDir string) (*Scope, error) {
	s := newScope(parent, file, cond, baseDir)
	for _, stmt := range stmts {
		switch st := stmt.(type) {
		case *parser.Assignment:
			values := st.Values
			if isPathKey(st.Key) {
				values = make([]string, len(st.Values))
				for i, v := range st.Values {
					values[i] = MapToFile(v, s.basedir, s.currentdir, false)
				}
			}
			var op Operation
			switch st.Op {
			case parser.OpSet:
				op = &SetOp{Values: values}
			case parser.OpAdd:
				op = &AddOp{Values: values}
			case parser.OpUniqueAdd:
				op = &UniqueAddOp{Values: values}
			case parser.OpRemove:
				op = &RemoveOp{Values: values}
			default:
				return nil, errors.New(errors.ErrInvariant,
					"unexpected operation %q in scope %s", string(st.Op), s)
			}
			s.appendOperation(st.Key, op)

		case *parser.Conditional:
			if _, err := FromStatements(s, file, st.Then, st.Condition, s.basedir); err != nil {
				return nil, err
			}
			if len(st.Else) > 0 {
				if _, err := FromStatements(s, file, st.Else, "else", s.basedir); err != nil {
					return nil, err
				}
			}

		case *parser.Load:
			s.appendOperation("_LOADED", &UniqueAddOp{Values: []string{st.Name}})

		case *parser.Option:
			s.appendOperation("_OPTION", &UniqueAddOp{Values: []string{st.Name}})

		case *parser.Include:
			mapped := MapToFile(st.Path, s.basedir, s.currentdir, false)
			s.appendOperation("_INCLUDED", &UniqueAddOp{Values: []string{mapped}})

		case *parser.FunctionCall:
			// consumed for bracket balance only, nothing to record
		}
	}
	return s, nil
}
