package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr error
	}{
		{
			name: "simple select",
			sql:  "SELECT 1",
		},
		{
			name: "select with cte",
			sql:  "WITH c AS (SELECT x AS y FROM t) SELECT y FROM c",
		},
		{
			name:    "empty input",
			sql:     "",
			wantErr: ErrEmptyStatement,
		},
		{
			name:    "whitespace only",
			sql:     "   \n\t  ",
			wantErr: ErrEmptyStatement,
		},
		{
			name:    "multiple statements",
			sql:     "SELECT 1; SELECT 2",
			wantErr: ErrMultiStatement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.sql)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, result.Stmts, 1)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("SELECT FROM WHERE")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyStatement)
	assert.NotErrorIs(t, err, ErrMultiStatement)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want StatementKind
	}{
		{
			name: "plain select",
			sql:  "SELECT a FROM t",
			want: KindSelect,
		},
		{
			name: "insert",
			sql:  "INSERT INTO t (a) VALUES (1)",
			want: KindInsert,
		},
		{
			name: "update",
			sql:  "UPDATE t SET a = 1",
			want: KindUpdate,
		},
		{
			name: "delete",
			sql:  "DELETE FROM t",
			want: KindDelete,
		},
		{
			name: "create table",
			sql:  "CREATE TABLE t (a INT)",
			want: KindCreate,
		},
		{
			name: "create table as select",
			sql:  "CREATE TABLE t2 AS SELECT a FROM t",
			want: KindCreate,
		},
		{
			name: "alter table",
			sql:  "ALTER TABLE t ADD COLUMN b INT",
			want: KindAlter,
		},
		{
			name: "drop table",
			sql:  "DROP TABLE t",
			want: KindDrop,
		},
		{
			name: "truncate",
			sql:  "TRUNCATE t",
			want: KindTruncate,
		},
		{
			name: "rename",
			sql:  "ALTER TABLE t RENAME TO t2",
			want: KindRename,
		},
		{
			name: "delete nested in cte",
			sql:  "WITH d AS (DELETE FROM t RETURNING a) SELECT a FROM d",
			want: KindDelete,
		},
		{
			name: "explain is not a select",
			sql:  "EXPLAIN SELECT a FROM t",
			want: KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Classify(result))
		})
	}
}

func TestStatementKind_String(t *testing.T) {
	assert.Equal(t, "Select", KindSelect.String())
	assert.Equal(t, "Drop", KindDrop.String())
	assert.Equal(t, "Other", KindOther.String())
	assert.Equal(t, "Other", StatementKind(99).String())
}
