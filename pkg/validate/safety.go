package validate

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// harmfulKeywords is the lexical fallback deny-list applied when a
// statement cannot be parsed. Keyword presence fails the check; absence is
// only a provisional pass for this stage, the statement still cannot clear
// the later stages.
var harmfulKeywords = []string{"DROP", "DELETE", "INSERT", "UPDATE", "CREATE", "ALTER"}

// checkSafety rejects any statement whose tree contains a DDL or mutating
// DML node, and any statement not rooted at a SELECT. Detection is
// structural over the full tree, so a read-only-looking wrapper embedding
// a mutating clause is still caught.
func checkSafety(result *pg_query.ParseResult) (bool, string) {
	if kind, found := findForbiddenKind(result); found {
		return false, kind.String() + " operation detected"
	}
	if result.Stmts[0].Stmt.GetSelectStmt() == nil {
		return false, "non-SELECT statement"
	}
	return true, ""
}

// scanHarmfulKeywords is the case-insensitive lexical fallback for
// unparseable input.
func scanHarmfulKeywords(sqlText string) (string, bool) {
	upper := strings.ToUpper(sqlText)
	for _, kw := range harmfulKeywords {
		if strings.Contains(upper, kw) {
			return kw, true
		}
	}
	return "", false
}
