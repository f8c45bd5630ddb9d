package scope

import "strings"

// Operation is one recorded update for a key. Resolving a key left-folds its
// operation list over an empty sequence.
type Operation interface {
	Process(input []string) []string
	String() string
}

// SetOp replaces the accumulated values.
type SetOp struct {
	Values []string
}

// AddOp appends its values.
type AddOp struct {
	Values []string
}

// UniqueAddOp appends only values not already accumulated.
type UniqueAddOp struct {
	Values []string
}

// RemoveOp drops values that are present. A value that is absent appends the
// literal "-value" marker instead; the output pass later turns those markers
// into removal comments.
type RemoveOp struct {
	Values []string
}

func (o *SetOp) Process(input []string) []string {
	return o.Values
}

func (o *AddOp) Process(input []string) []string {
	return append(append([]string{}, input...), o.Values...)
}

func (o *UniqueAddOp) Process(input []string) []string {
	result := append([]string{}, input...)
	for _, v := range o.Values {
		if !contains(result, v) {
			result = append(result, v)
		}
	}
	return result
}

func (o *RemoveOp) Process(input []string) []string {
	removing := map[string]bool{}
	for _, v := range o.Values {
		removing[v] = true
	}
	var result []string
	for _, in := range input {
		if !removing[in] {
			result = append(result, in)
		}
	}
	present := map[string]bool{}
	for _, in := range input {
		present[in] = true
	}
	for _, v := range o.Values {
		if !present[v] {
			result = append(result, "-"+v)
		}
	}
	return result
}

func (o *SetOp) String() string       { return "=(" + dumpValues(o.Values) + ")" }
func (o *AddOp) String() string       { return "+(" + dumpValues(o.Values) + ")" }
func (o *UniqueAddOp) String() string { return "*(" + dumpValues(o.Values) + ")" }
func (o *RemoveOp) String() string    { return "-(" + dumpValues(o.Values) + ")" }

func dumpValues(values []string) string {
	if len(values) == 0 {
		return "<NOTHING>"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			quoted[i] = "<NONE>"
		} else {
			quoted[i] = v
		}
	}
	return `"` + strings.Join(quoted, `", "`) + `"`
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
