package validate

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgate/pkg/adapter"
	"github.com/leapstack-labs/sqlgate/pkg/dialect"
)

// fakeAdapter serves a fixed schema from memory and delegates statement
// execution to a sqlmock-backed database.
type fakeAdapter struct {
	db      *sql.DB
	tables  map[string][]adapter.Column
	listErr error
	metaErr error
}

func (f *fakeAdapter) Connect(ctx context.Context, cfg adapter.Config) error { return nil }
func (f *fakeAdapter) Close() error                                          { return nil }
func (f *fakeAdapter) Exec(ctx context.Context, sqlText string) error        { return nil }

func (f *fakeAdapter) Query(ctx context.Context, sqlText string) (*sql.Rows, error) {
	return f.db.QueryContext(ctx, sqlText)
}

func (f *fakeAdapter) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return f.db.BeginTx(ctx, nil)
}

func (f *fakeAdapter) ListTables(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	names := make([]string, 0, len(f.tables))
	for name := range f.tables {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeAdapter) GetTableMetadata(ctx context.Context, table string) (*adapter.TableMetadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	cols, ok := f.tables[table]
	if !ok {
		return nil, errors.New("no such table: " + table)
	}
	return &adapter.TableMetadata{Name: table, Columns: cols}, nil
}

func (f *fakeAdapter) Dialect() *dialect.Dialect { return dialect.SQLite }

// newTestValidator wires a validator over a readings(country, value) schema
// backed by sqlmock.
func newTestValidator(t *testing.T) (*Validator, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	conn := &fakeAdapter{
		db: db,
		tables: map[string][]adapter.Column{
			"readings": {
				{Name: "country", Type: "TEXT", Position: 1},
				{Name: "value", Type: "REAL", Position: 2},
			},
		},
	}

	v, err := New(context.Background(), conn)
	require.NoError(t, err)
	return v, mock
}

func TestNew_SchemaUnavailable(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	conn := &fakeAdapter{db: db, listErr: errors.New("connection refused")}

	v, err := New(context.Background(), conn)
	assert.Nil(t, v)

	var schemaErr *SchemaUnavailableError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Error(), "connection refused")
}

func TestValidate_Pass(t *testing.T) {
	v, mock := newTestValidator(t)

	query := "SELECT country, AVG(value) AS avg_value FROM readings GROUP BY country"
	mock.ExpectBegin()
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"country", "avg_value"}).AddRow("NO", 4.2))
	mock.ExpectRollback()

	verdict := v.Validate(context.Background(), query)
	assert.True(t, verdict.Passed)
	assert.Equal(t, "all validations passed", verdict.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_SafetyShortCircuit(t *testing.T) {
	v, mock := newTestValidator(t)

	// No probe expectations: a safety failure must never touch the store.
	verdict := v.Validate(context.Background(), "DROP TABLE readings")
	assert.False(t, verdict.Passed)
	assert.Equal(t, StageSafety, verdict.Stage)
	assert.Equal(t, "Safety failed: Drop operation detected", verdict.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_SemanticShortCircuit(t *testing.T) {
	v, mock := newTestValidator(t)

	verdict := v.Validate(context.Background(), "SELECT bogus_col FROM readings")
	assert.False(t, verdict.Passed)
	assert.Equal(t, StageSemantic, verdict.Stage)
	assert.Equal(t, "Semantic failed: missing columns: bogus_col", verdict.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_ExecutionFailure(t *testing.T) {
	v, mock := newTestValidator(t)

	query := "SELECT country FROM readings"
	mock.ExpectBegin()
	mock.ExpectQuery(query).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	verdict := v.Validate(context.Background(), query)
	assert.False(t, verdict.Passed)
	assert.Equal(t, StageExecution, verdict.Stage)
	assert.Equal(t, "Execution failed: disk I/O error", verdict.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_ExecutionRowError(t *testing.T) {
	v, mock := newTestValidator(t)

	query := "SELECT value FROM readings"
	rows := sqlmock.NewRows([]string{"value"}).
		AddRow(1.5).
		RowError(0, errors.New("cannot cast to REAL"))
	mock.ExpectBegin()
	mock.ExpectQuery(query).WillReturnRows(rows)
	mock.ExpectRollback()

	verdict := v.Validate(context.Background(), query)
	assert.False(t, verdict.Passed)
	assert.Equal(t, StageExecution, verdict.Stage)
	assert.Contains(t, verdict.Message, "cannot cast to REAL")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_MultiStatement(t *testing.T) {
	v, mock := newTestValidator(t)

	verdict := v.Validate(context.Background(), "SELECT country FROM readings; SELECT value FROM readings")
	assert.False(t, verdict.Passed)
	assert.Equal(t, StageSafety, verdict.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_UnparseableKeywordFallback(t *testing.T) {
	v, _ := newTestValidator(t)

	tests := []struct {
		name      string
		sql       string
		wantStage Stage
	}{
		{
			name:      "harmful keyword in garbage input",
			sql:       "DROP (((",
			wantStage: StageSafety,
		},
		{
			name:      "harmless garbage input",
			sql:       "SELECT (((",
			wantStage: StageSemantic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Validate(context.Background(), tt.sql)
			assert.False(t, verdict.Passed)
			assert.Equal(t, tt.wantStage, verdict.Stage)
		})
	}
}

func TestValidate_TrimsInput(t *testing.T) {
	v, mock := newTestValidator(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT country FROM readings").WillReturnRows(
		sqlmock.NewRows([]string{"country"}))
	mock.ExpectRollback()

	verdict := v.Validate(context.Background(), "  SELECT country FROM readings\n")
	assert.True(t, verdict.Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_Idempotent(t *testing.T) {
	v, mock := newTestValidator(t)

	query := "SELECT country FROM readings"
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"country"}))
		mock.ExpectRollback()
	}

	first := v.Validate(context.Background(), query)
	second := v.Validate(context.Background(), query)
	assert.Equal(t, first, second)
	assert.True(t, first.Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidator_Reflect(t *testing.T) {
	v, _ := newTestValidator(t)

	assert.Equal(t, []string{"readings"}, v.Catalog().Tables())
	assert.Equal(t, []string{"country", "value"}, v.Catalog().Columns())

	require.NoError(t, v.Reflect(context.Background()))
	assert.Equal(t, []string{"readings"}, v.Catalog().Tables())
}
