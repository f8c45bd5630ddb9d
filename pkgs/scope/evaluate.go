package scope

import (
	"strings"

	"github.com/promake/pro2cmake/pkgs/condition"
	"github.com/promake/pro2cmake/pkgs/errors"
)

// EvaluateTotalConditions fills every scope's total condition: the
// simplified AND of its own condition (with else branches resolved against
// the preceding sibling) and its parent's combined condition.
func EvaluateTotalConditions(root *Scope) error {
	_, err := evaluateScope(root, "", "")
	return err
}

// evaluateScope computes one scope and recurses into its children. It
// returns the scope's effective condition (else resolved, before the parent
// condition is folded in) so a following else sibling can negate it.
func evaluateScope(s *Scope, parentCondition, previousCondition string) (string, error) {
	total := s.condition
	if total == "else" {
		if previousCondition == "" {
			return "", errors.New(errors.ErrInvariant,
				"else branch without previous condition in %s", s.file)
		}
		if rest, ok := strings.CutPrefix(previousCondition, "NOT "); ok {
			total = rest
		} else if condition.IsSimpleCondition(previousCondition) {
			total = "NOT " + previousCondition
		} else {
			total = "NOT (" + previousCondition + ")"
		}
	}
	effective := total

	if parentCondition != "" {
		switch {
		case total == "":
			total = parentCondition
		case condition.IsSimpleCondition(parentCondition) && condition.IsSimpleCondition(total):
			total = parentCondition + " AND " + total
		case condition.IsSimpleCondition(total):
			total = "(" + parentCondition + ") AND " + total
		case condition.IsSimpleCondition(parentCondition):
			total = parentCondition + " AND (" + total + ")"
		default:
			total = "(" + parentCondition + ") AND (" + total + ")"
		}
	}

	s.totalCondition = condition.Simplify(total)

	previous := ""
	for _, c := range s.children {
		var err error
		previous, err = evaluateScope(c, total, previous)
		if err != nil {
			return "", err
		}
	}
	return effective, nil
}
