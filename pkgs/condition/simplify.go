package condition

import "strings"

var appleFlavors = []string{"APPLE_OSX", "APPLE_UIKIT", "APPLE_IOS", "APPLE_TVOS", "APPLE_WATCHOS"}
var bsdFlavors = []string{"APPLE", "FREEBSD", "OPENBSD", "NETBSD"}

var unixFlavors = func() []string {
	var fs []string
	fs = append(fs, "APPLE")
	fs = append(fs, appleFlavors...)
	fs = append(fs, "BSD")
	fs = append(fs, bsdFlavors...)
	fs = append(fs, "LINUX", "ANDROID", "ANDROID_EMBEDDED", "INTEGRITY", "VXWORKS", "QNX", "WASM")
	return fs
}()

// platformGroups records which flavor variables are subordinate to which
// root. `root AND flavor` reduces to the flavor, `root OR flavor` to the
// root, `NOT root AND flavor` to OFF.
var platformGroups = []struct {
	root    string
	flavors []string
}{
	{"WIN32", []string{"WINRT"}},
	{"APPLE", appleFlavors},
	{"BSD", bsdFlavors},
	{"UNIX", unixFlavors},
}

// Simplify reduces a canonicalized condition using generic propositional
// rules plus the platform hierarchy. Unparseable conditions are returned
// unchanged; an empty condition means unconditional and becomes ON.
func Simplify(cond string) string {
	input := strings.TrimSpace(cond)
	if input == "" {
		return "ON"
	}
	expr, err := parseExpr(input)
	if err != nil {
		return input
	}

	out := render(expr)
	for {
		expr = normalize(domainRules(normalize(expr)))
		next := render(expr)
		if next == out {
			break
		}
		out = next
	}
	if out == "" {
		return "ON"
	}
	return out
}

// normalize applies generic propositional simplification: flattening,
// constant folding, double negation, duplicate removal, complement and
// absorption laws.
func normalize(e Expr) Expr {
	switch x := e.(type) {
	case *Not:
		inner := normalize(x.X)
		switch v := inner.(type) {
		case Const:
			return Const(!bool(v))
		case *Not:
			return v.X
		}
		return &Not{X: inner}
	case *And:
		return normalizeJunction(x.Xs, true)
	case *Or:
		return normalizeJunction(x.Xs, false)
	}
	return e
}

func normalizeJunction(operands []Expr, isAnd bool) Expr {
	identity := Const(isAnd)
	annihilator := Const(!isAnd)

	var xs []Expr
	for _, sub := range operands {
		sub = normalize(sub)
		switch v := sub.(type) {
		case Const:
			if v == annihilator {
				return annihilator
			}
			// identity constant, drop
		case *And:
			if isAnd {
				xs = append(xs, v.Xs...)
			} else {
				xs = append(xs, v)
			}
		case *Or:
			if !isAnd {
				xs = append(xs, v.Xs...)
			} else {
				xs = append(xs, v)
			}
		default:
			xs = append(xs, sub)
		}
	}

	// duplicate removal
	seen := map[string]bool{}
	deduped := xs[:0]
	for _, sub := range xs {
		key := render(sub)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, sub)
	}
	xs = deduped

	// complement law: X and NOT X together annihilate
	for _, sub := range xs {
		if n, ok := sub.(*Not); ok && seen[render(n.X)] {
			return annihilator
		}
	}

	// absorption: a compound operand containing another operand is redundant
	// in And/Or position (X AND (X OR Y) == X, X OR (X AND Y) == X)
	var kept []Expr
	for _, sub := range xs {
		if absorbedBy(sub, xs, isAnd) {
			continue
		}
		kept = append(kept, sub)
	}
	xs = kept

	switch len(xs) {
	case 0:
		return identity
	case 1:
		return xs[0]
	}
	if isAnd {
		return &And{Xs: xs}
	}
	return &Or{Xs: xs}
}

func absorbedBy(sub Expr, all []Expr, isAnd bool) bool {
	var inner []Expr
	if isAnd {
		or, ok := sub.(*Or)
		if !ok {
			return false
		}
		inner = or.Xs
	} else {
		and, ok := sub.(*And)
		if !ok {
			return false
		}
		inner = and.Xs
	}
	members := map[string]bool{}
	for _, x := range inner {
		members[render(x)] = true
	}
	self := render(sub)
	for _, other := range all {
		if render(other) == self {
			continue
		}
		if members[render(other)] {
			return true
		}
	}
	return false
}

// domainRules applies the platform hierarchy rewrites at every node.
func domainRules(e Expr) Expr {
	switch x := e.(type) {
	case *Not:
		inner := domainRules(x.X)
		if v, ok := inner.(Var); ok {
			if v == "UNIX" {
				return Var("WIN32")
			}
			if v == "WIN32" {
				return Var("UNIX")
			}
		}
		return &Not{X: inner}
	case *And:
		xs := domainEach(x.Xs)
		if hasVar(xs, "UNIX") && hasVar(xs, "WIN32") {
			return Const(false)
		}
		if hasVar(xs, "WIN32") {
			for _, flavor := range unixFlavors {
				if hasVar(xs, flavor) {
					return Const(false)
				}
			}
		}
		for _, g := range platformGroups {
			for _, flavor := range g.flavors {
				if !hasVar(xs, flavor) {
					continue
				}
				if hasVar(xs, g.root) {
					xs = dropVar(xs, g.root)
				}
				if hasNotVar(xs, g.root) {
					return Const(false)
				}
			}
		}
		return &And{Xs: xs}
	case *Or:
		xs := domainEach(x.Xs)
		if hasVar(xs, "UNIX") && hasVar(xs, "WIN32") {
			return Const(true)
		}
		for _, g := range platformGroups {
			if !hasVar(xs, g.root) {
				continue
			}
			for _, flavor := range g.flavors {
				if hasVar(xs, flavor) {
					xs = dropVar(xs, flavor)
				}
			}
		}
		return &Or{Xs: xs}
	}
	return e
}

func domainEach(xs []Expr) []Expr {
	out := make([]Expr, len(xs))
	for i, sub := range xs {
		out[i] = domainRules(sub)
	}
	return out
}

func hasVar(xs []Expr, name string) bool {
	for _, sub := range xs {
		if v, ok := sub.(Var); ok && string(v) == name {
			return true
		}
	}
	return false
}

func hasNotVar(xs []Expr, name string) bool {
	for _, sub := range xs {
		if n, ok := sub.(*Not); ok {
			if v, ok := n.X.(Var); ok && string(v) == name {
				return true
			}
		}
	}
	return false
}

func dropVar(xs []Expr, name string) []Expr {
	var out []Expr
	for _, sub := range xs {
		if v, ok := sub.(Var); ok && string(v) == name {
			continue
		}
		out = append(out, sub)
	}
	return out
}
