package validate

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/sqlgate/pkg/adapter"
	"golang.org/x/sync/errgroup"
)

// reflectConcurrency bounds how many per-table metadata queries run at once
// while building a catalog.
const reflectConcurrency = 4

// Catalog is the reflected set of known table and column names from a live
// store. Column names are flattened across all tables; a column is not
// qualified by the table it belongs to. Names are case-folded on insert and
// lookup. A catalog is immutable once built and safe to share across
// concurrent validations.
type Catalog struct {
	tables  map[string]struct{}
	columns map[string]struct{}
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tables:  make(map[string]struct{}),
		columns: make(map[string]struct{}),
	}
}

func (c *Catalog) addTable(name string) {
	c.tables[fold(name)] = struct{}{}
}

func (c *Catalog) addColumn(name string) {
	c.columns[fold(name)] = struct{}{}
}

// HasTable reports whether the catalog contains the named table.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.tables[fold(name)]
	return ok
}

// HasColumn reports whether the catalog contains the named column on any
// table.
func (c *Catalog) HasColumn(name string) bool {
	_, ok := c.columns[fold(name)]
	return ok
}

// Tables returns the sorted table names in the catalog.
func (c *Catalog) Tables() []string {
	return sortedKeys(c.tables)
}

// Columns returns the sorted column names in the catalog.
func (c *Catalog) Columns() []string {
	return sortedKeys(c.columns)
}

// fold normalizes an identifier the way the parser does for unquoted names.
func fold(name string) string {
	return strings.ToLower(name)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ReflectCatalog builds a catalog from the live store behind conn. Table
// enumeration happens first; column metadata for the discovered tables is
// then fetched with bounded concurrency. Any introspection error aborts the
// whole reflection with a SchemaUnavailableError, never a partial catalog.
func ReflectCatalog(ctx context.Context, conn adapter.Adapter) (*Catalog, error) {
	tables, err := conn.ListTables(ctx)
	if err != nil {
		return nil, &SchemaUnavailableError{Err: err}
	}

	cat := NewCatalog()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reflectConcurrency)
	for _, table := range tables {
		cat.addTable(table)
		g.Go(func() error {
			md, err := conn.GetTableMetadata(gctx, table)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, col := range md.Columns {
				cat.addColumn(col.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &SchemaUnavailableError{Err: err}
	}

	return cat, nil
}
