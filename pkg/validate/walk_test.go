package validate

import (
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestWalk_VisitsNestedNodes(t *testing.T) {
	result, err := Parse("SELECT a FROM t WHERE b IN (SELECT c FROM u)")
	require.NoError(t, err)

	var selects, columns, tables int
	Walk(result, func(n proto.Message) bool {
		switch n.(type) {
		case *pg_query.SelectStmt:
			selects++
		case *pg_query.ColumnRef:
			columns++
		case *pg_query.RangeVar:
			tables++
		}
		return true
	})

	assert.Equal(t, 2, selects, "outer select and subquery")
	assert.Equal(t, 3, columns, "a, b, c")
	assert.Equal(t, 2, tables, "t and u")
}

func TestWalk_SkipDescendants(t *testing.T) {
	result, err := Parse("SELECT a FROM t WHERE b IN (SELECT c FROM u)")
	require.NoError(t, err)

	// Stopping at every SELECT means the nested statement's internals
	// are never visited.
	var columns int
	Walk(result, func(n proto.Message) bool {
		switch n.(type) {
		case *pg_query.SelectStmt:
			return false
		case *pg_query.ColumnRef:
			columns++
		}
		return true
	})

	assert.Zero(t, columns)
}

func TestWalk_NilRoot(t *testing.T) {
	assert.NotPanics(t, func() {
		Walk(nil, func(proto.Message) bool { return true })
	})
}
