package database

import (
	"errors"
	"fmt"
	"strings"
)

// Assignment is one "column = value" pair of a partial UPDATE. A nil Value
// writes NULL.
type Assignment struct {
	Column string
	Value  any
}

var ErrNoAssignments = errors.New("no columns to update")

// SetClause renders "col = :col, ..." for sqlx named queries together with
// the named arguments. Columns must be listed in allowed; the caller's
// assignments never reach the SQL text otherwise.
func SetClause(assignments []Assignment, allowed ...string) (string, map[string]any, error) {
	if len(assignments) == 0 {
		return "", nil, ErrNoAssignments
	}
	ok := make(map[string]struct{}, len(allowed))
	for _, c := range allowed {
		ok[c] = struct{}{}
	}
	parts := make([]string, 0, len(assignments))
	args := make(map[string]any, len(assignments)+2)
	for _, a := range assignments {
		if _, found := ok[a.Column]; !found {
			return "", nil, fmt.Errorf("column %q cannot be updated", a.Column)
		}
		if _, dup := args[a.Column]; dup {
			return "", nil, fmt.Errorf("column %q assigned twice", a.Column)
		}
		parts = append(parts, a.Column+" = :"+a.Column)
		args[a.Column] = a.Value
	}
	return strings.Join(parts, ", "), args, nil
}
