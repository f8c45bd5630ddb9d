// Package scope models a parsed project file as a tree of conditional
// scopes, each accumulating per-key update operations. The tree is built
// from the statement sequence, annotated with propagated total conditions
// and finally flattened and merged for output.
package scope

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/promake/pro2cmake/pkgs/condition"
	"github.com/promake/pro2cmake/pkgs/errors"
)

// Scope is one conditional region of a project file. The root scope of a
// file carries an empty condition; an else branch carries the literal
// condition "else" until total conditions are evaluated.
type Scope struct {
	parent   *Scope
	children []*Scope

	file       string
	basedir    string
	currentdir string

	condition      string // canonicalized at construction
	totalCondition string // filled by EvaluateTotalConditions

	operations map[string][]Operation
	keyOrder   []string
	visited    map[string]bool
}

func newScope(parent *Scope, file, cond, baseDir string) *Scope {
	currentDir := ""
	if file != "" {
		currentDir = filepath.Dir(file)
	}
	if currentDir == "" {
		currentDir = "."
	}
	if baseDir == "" {
		baseDir = currentDir
	}
	s := &Scope{
		file:       file,
		basedir:    baseDir,
		currentdir: currentDir,
		condition:  condition.MapCondition(cond),
		operations: map[string][]Operation{},
		visited:    map[string]bool{},
	}
	if parent != nil {
		parent.addChild(s)
	}
	return s
}

func (s *Scope) addChild(c *Scope) {
	c.parent = s
	s.children = append(s.children, c)
}

func (s *Scope) appendOperation(key string, op Operation) {
	if _, ok := s.operations[key]; !ok {
		s.keyOrder = append(s.keyOrder, key)
	}
	s.operations[key] = append(s.operations[key], op)
}

// Parent returns the enclosing scope, nil for a file root.
func (s *Scope) Parent() *Scope { return s.parent }

// Children returns the owned child scopes in source order.
func (s *Scope) Children() []*Scope { return s.children }

// File returns the path of the file this scope was built from.
func (s *Scope) File() string { return s.file }

// Basedir returns the directory the output file is written relative to.
func (s *Scope) Basedir() string { return s.basedir }

// Currentdir returns the directory of the file that defined this scope;
// it differs from Basedir inside included files.
func (s *Scope) Currentdir() string { return s.currentdir }

// Condition returns the canonicalized raw condition of this scope.
func (s *Scope) Condition() string { return s.condition }

// TotalCondition returns the propagated, simplified condition, empty until
// EvaluateTotalConditions has run.
func (s *Scope) TotalCondition() string { return s.totalCondition }

// CMakeListsPath returns the output path for this scope's file.
func (s *Scope) CMakeListsPath() string {
	return filepath.Join(s.basedir, "CMakeLists.txt")
}

// Keys returns the keys with recorded operations, in first-recorded order.
func (s *Scope) Keys() []string {
	return s.keyOrder
}

// VisitedKeys returns the set of keys resolved since the last reset.
func (s *Scope) VisitedKeys() map[string]bool {
	return s.visited
}

// ResetVisitedKeys clears the visited-key tracking before an output section
// starts resolving.
func (s *Scope) ResetVisitedKeys() {
	s.visited = map[string]bool{}
}

// Resolve folds the key's operation list over an empty sequence. Only this
// scope's own operations take part; ancestors are never consulted. The key
// is marked visited.
func (s *Scope) Resolve(key string) []string {
	s.visited[key] = true
	var result []string
	for _, op := range s.operations[key] {
		result = op.Process(result)
	}
	return result
}

// ResolveString resolves a key expected to hold at most one value. More than
// one value is an invariant violation.
func (s *Scope) ResolveString(key, defaultValue string) (string, error) {
	v := s.Resolve(key)
	switch len(v) {
	case 0:
		return defaultValue, nil
	case 1:
		return v[0], nil
	}
	return "", errors.New(errors.ErrInvariant,
		"key %s in %s resolves to %d values, expected at most one", key, s, len(v))
}

// Template returns the project kind, defaulting to "app".
func (s *Scope) Template() (string, error) {
	return s.ResolveString("TEMPLATE", "app")
}

// Target returns the target name, defaulting to the file's base name.
func (s *Scope) Target() (string, error) {
	t, err := s.ResolveString("TARGET", "")
	if err != nil || t != "" {
		return t, err
	}
	base := filepath.Base(s.file)
	return strings.TrimSuffix(base, filepath.Ext(base)), nil
}

// Included returns the path-mapped include targets recorded in this scope.
func (s *Scope) Included() []string {
	return s.Resolve("_INCLUDED")
}

// Merge absorbs another scope: its children are re-parented here and its
// operation lists are appended key by key.
func (s *Scope) Merge(other *Scope) {
	for _, c := range other.children {
		s.addChild(c)
	}
	for _, key := range other.keyOrder {
		if _, ok := s.operations[key]; !ok {
			s.keyOrder = append(s.keyOrder, key)
		}
		s.operations[key] = append(s.operations[key], other.operations[key]...)
	}
}

func (s *Scope) String() string {
	cond := s.condition
	if cond == "" {
		cond = "<NONE>"
	}
	return fmt.Sprintf("%s:%s:%s", s.basedir, s.file, cond)
}

// Dump writes the scope tree with keys and operations, for the debug flags.
func (s *Scope) Dump(w io.Writer) {
	s.dump(w, 0)
}

func (s *Scope) dump(w io.Writer, indent int) {
	ind := strings.Repeat("    ", indent)
	fmt.Fprintf(w, "%sScope %q:\n", ind, s.String())
	fmt.Fprintf(w, "%s  Keys:\n", ind)
	if len(s.keyOrder) == 0 {
		fmt.Fprintf(w, "%s    -- NONE --\n", ind)
	} else {
		keys := append([]string{}, s.keyOrder...)
		sort.Strings(keys)
		for _, k := range keys {
			reprs := make([]string, len(s.operations[k]))
			for i, op := range s.operations[k] {
				reprs[i] = op.String()
			}
			fmt.Fprintf(w, "%s    %s = [%s]\n", ind, k, strings.Join(reprs, " "))
		}
	}
	fmt.Fprintf(w, "%s  Children:\n", ind)
	if len(s.children) == 0 {
		fmt.Fprintf(w, "%s    -- NONE --\n", ind)
	} else {
		for _, c := range s.children {
			c.dump(w, indent+1)
		}
	}
}
