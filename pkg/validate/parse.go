package validate

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"google.golang.org/protobuf/proto"
)

// StatementKind classifies the root statement of a parsed query.
type StatementKind int

const (
	KindSelect StatementKind = iota
	KindInsert
	KindUpdate
	KindDelete
	KindCreate
	KindAlter
	KindDrop
	KindTruncate
	KindRename
	KindOther
)

var kindNames = map[StatementKind]string{
	KindSelect:   "Select",
	KindInsert:   "Insert",
	KindUpdate:   "Update",
	KindDelete:   "Delete",
	KindCreate:   "Create",
	KindAlter:    "Alter",
	KindDrop:     "Drop",
	KindTruncate: "Truncate",
	KindRename:   "Rename",
	KindOther:    "Other",
}

func (k StatementKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Other"
}

// Parse parses a single SQL statement with the PostgreSQL grammar.
// Empty input yields ErrEmptyStatement; more than one statement yields
// ErrMultiStatement; anything the grammar rejects comes back as the
// parser's own syntax error.
func Parse(sqlText string) (*pg_query.ParseResult, error) {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return nil, ErrEmptyStatement
	}

	result, err := pg_query.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	if len(result.Stmts) == 0 || result.Stmts[0].Stmt == nil {
		return nil, ErrEmptyStatement
	}
	if len(result.Stmts) > 1 {
		return nil, ErrMultiStatement
	}
	return result, nil
}

// Classify determines the statement kind by searching the whole tree, not
// only the root: any DDL or mutating DML node anywhere in the statement
// tags the statement with that kind. A clean tree rooted at a SELECT is
// KindSelect; any other root is KindOther.
func Classify(result *pg_query.ParseResult) StatementKind {
	if kind, found := findForbiddenKind(result); found {
		return kind
	}
	if result.Stmts[0].Stmt.GetSelectStmt() != nil {
		return KindSelect
	}
	return KindOther
}

// findForbiddenKind searches the full tree for DDL and mutating DML nodes.
// DDL kinds take precedence over DML kinds so that e.g. CREATE TABLE AS
// SELECT reports Create.
func findForbiddenKind(result *pg_query.ParseResult) (StatementKind, bool) {
	var ddl, dml StatementKind
	foundDDL, foundDML := false, false

	Walk(result, func(n proto.Message) bool {
		if foundDDL {
			return false
		}
		switch n.(type) {
		case *pg_query.DropStmt:
			ddl, foundDDL = KindDrop, true
		case *pg_query.TruncateStmt:
			ddl, foundDDL = KindTruncate, true
		case *pg_query.RenameStmt:
			ddl, foundDDL = KindRename, true
		case *pg_query.CreateStmt, *pg_query.CreateTableAsStmt, *pg_query.CreateSchemaStmt, *pg_query.ViewStmt, *pg_query.IndexStmt:
			ddl, foundDDL = KindCreate, true
		case *pg_query.AlterTableStmt, *pg_query.AlterObjectSchemaStmt:
			ddl, foundDDL = KindAlter, true
		case *pg_query.InsertStmt:
			if !foundDML {
				dml, foundDML = KindInsert, true
			}
		case *pg_query.UpdateStmt:
			if !foundDML {
				dml, foundDML = KindUpdate, true
			}
		case *pg_query.DeleteStmt:
			if !foundDML {
				dml, foundDML = KindDelete, true
			}
		}
		return true
	})

	if foundDDL {
		return ddl, true
	}
	if foundDML {
		return dml, true
	}
	return KindOther, false
}
