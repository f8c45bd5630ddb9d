package scope

// Flatten lists a scope tree in pre-order: every node precedes its children.
func Flatten(s *Scope) []*Scope {
	result := []*Scope{s}
	for _, c := range s.children {
		result = append(result, Flatten(c)...)
	}
	return result
}

// MergeScopes drops scopes whose total condition simplified to OFF and
// combines scopes sharing a total condition: the first one seen absorbs the
// later ones. Order is otherwise preserved, so the file root stays first.
func MergeScopes(scopes []*Scope) []*Scope {
	var result []*Scope
	known := map[string]*Scope{}
	for _, s := range scopes {
		total := s.TotalCondition()
		if total == "OFF" {
			continue
		}
		if existing, ok := known[total]; ok {
			existing.Merge(s)
			continue
		}
		result = append(result, s)
		known[total] = s
	}
	return result
}
