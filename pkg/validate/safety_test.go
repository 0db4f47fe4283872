package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSafety(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		wantOK     bool
		wantReason string
	}{
		{
			name:   "plain select",
			sql:    "SELECT a FROM t",
			wantOK: true,
		},
		{
			name:   "select with cte and aggregate",
			sql:    "WITH c AS (SELECT a FROM t) SELECT COUNT(*) FROM c",
			wantOK: true,
		},
		{
			name:       "drop table",
			sql:        "DROP TABLE readings",
			wantOK:     false,
			wantReason: "Drop operation detected",
		},
		{
			name:       "delete",
			sql:        "DELETE FROM t WHERE a = 1",
			wantOK:     false,
			wantReason: "Delete operation detected",
		},
		{
			name:       "insert",
			sql:        "INSERT INTO t (a) VALUES (1)",
			wantOK:     false,
			wantReason: "Insert operation detected",
		},
		{
			name:       "update",
			sql:        "UPDATE t SET a = 1",
			wantOK:     false,
			wantReason: "Update operation detected",
		},
		{
			name:       "truncate",
			sql:        "TRUNCATE t",
			wantOK:     false,
			wantReason: "Truncate operation detected",
		},
		{
			name:       "rename",
			sql:        "ALTER TABLE t RENAME TO t2",
			wantOK:     false,
			wantReason: "Rename operation detected",
		},
		{
			name:       "create table as select",
			sql:        "CREATE TABLE t2 AS SELECT a FROM t",
			wantOK:     false,
			wantReason: "Create operation detected",
		},
		{
			name:       "mutation nested in cte is still caught",
			sql:        "WITH d AS (DELETE FROM t RETURNING a) SELECT a FROM d",
			wantOK:     false,
			wantReason: "Delete operation detected",
		},
		{
			name:       "explain wrapper is not a select",
			sql:        "EXPLAIN SELECT a FROM t",
			wantOK:     false,
			wantReason: "non-SELECT statement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.sql)
			require.NoError(t, err)

			ok, reason := checkSafety(result)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}

func TestScanHarmfulKeywords(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		wantKW    string
		wantFound bool
	}{
		{
			name:      "lowercase drop",
			sql:       "drop table t ???",
			wantKW:    "DROP",
			wantFound: true,
		},
		{
			name:      "mixed case delete",
			sql:       "DeLeTe from t garbage(((",
			wantKW:    "DELETE",
			wantFound: true,
		},
		{
			name:      "no harmful keyword",
			sql:       "slect a from t",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw, found := scanHarmfulKeywords(tt.sql)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantKW, kw)
		})
	}
}
