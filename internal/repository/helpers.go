package repository

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code raised when a unique
// index rejects a write. The schema's unique indexes are the
// authoritative duplicate guard; service-level pre-checks only provide
// fast-fail responses, so concurrent writers racing past a pre-check
// still surface here.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a store-level unique
// constraint conflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// buildSetClause renders a deterministic SET clause for partial updates.
// Returns the clause, the ordered args, and the next placeholder index.
func buildSetClause(set map[string]interface{}, startIndex int) (string, []interface{}, int) {
	columns := make([]string, 0, len(set))
	for column := range set {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	clause := ""
	args := make([]interface{}, 0, len(set))
	for i, column := range columns {
		if i > 0 {
			clause += ", "
		}
		clause += fmt.Sprintf("%s = $%d", column, startIndex+i)
		args = append(args, set[column])
	}
	return clause, args, startIndex + len(columns)
}
