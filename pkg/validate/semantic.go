package validate

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"google.golang.org/protobuf/proto"
)

// referenceSets holds the identifier sets collected from one statement
// tree. Query-local names (projection aliases, CTE names, CTE output
// columns) are kept apart from the table and column references that must
// exist in the schema catalog.
type referenceSets struct {
	selectAliases map[string]struct{}
	cteNames      map[string]struct{}
	cteColumns    map[string]struct{}
	realColumns   map[string]struct{}
	usedTables    map[string]struct{}
}

// checkSemantics cross-checks the statement's table and column references
// against the catalog. Generated SQL frequently invents plausible-looking
// names; the collection passes below make sure a query-local alias is
// never mistaken for a stored column, because false rejections of valid
// aliased queries are the primary failure mode here.
func checkSemantics(result *pg_query.ParseResult, catalog *Catalog) (bool, string) {
	refs := collectReferences(result)

	var missingTables, missingColumns []string
	for table := range refs.usedTables {
		if !catalog.HasTable(table) {
			missingTables = append(missingTables, table)
		}
	}
	for column := range refs.realColumns {
		if !catalog.HasColumn(column) {
			missingColumns = append(missingColumns, column)
		}
	}

	if len(missingTables) > 0 {
		return false, fmt.Sprintf("missing tables: %s", joinSorted(missingTables))
	}
	if len(missingColumns) > 0 {
		return false, fmt.Sprintf("missing columns: %s", joinSorted(missingColumns))
	}
	return true, ""
}

func joinSorted(names []string) string {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return strings.Join(sortedKeys(set), ", ")
}

// collectReferences runs the four collection passes over the tree:
//
//  1. CTE definitions: each WITH-bound name, plus the aliased output
//     columns of each CTE's own select list.
//  2. Projection aliases of every SELECT anywhere in the tree, nested
//     subqueries and CTE bodies included.
//  3. Column references, excluding alias names and any reference that sits
//     inside an alias definition.
//  4. Table references, minus the CTE names.
func collectReferences(result *pg_query.ParseResult) *referenceSets {
	refs := &referenceSets{
		selectAliases: make(map[string]struct{}),
		cteNames:      make(map[string]struct{}),
		cteColumns:    make(map[string]struct{}),
		realColumns:   make(map[string]struct{}),
		usedTables:    make(map[string]struct{}),
	}

	Walk(result, func(n proto.Message) bool {
		switch node := n.(type) {
		case *pg_query.CommonTableExpr:
			refs.collectCTE(node)
		case *pg_query.SelectStmt:
			for _, target := range node.TargetList {
				if rt := target.GetResTarget(); rt != nil && rt.Name != "" {
					refs.selectAliases[fold(rt.Name)] = struct{}{}
				}
			}
		case *pg_query.RangeVar:
			if node.Relname != "" {
				refs.usedTables[fold(node.Relname)] = struct{}{}
			}
		}
		return true
	})

	// Column collection needs its own descent so that every reference
	// below an alias definition inherits the exclusion, transitively
	// through nested subqueries.
	refs.collectColumns(result, false)

	for cte := range refs.cteNames {
		delete(refs.usedTables, cte)
	}

	return refs
}

// collectCTE records a WITH-bound name and its locally produced output
// columns: explicit column aliases on the CTE itself and aliased
// projections in the CTE's top-level select list.
func (refs *referenceSets) collectCTE(cte *pg_query.CommonTableExpr) {
	if cte.Ctename != "" {
		refs.cteNames[fold(cte.Ctename)] = struct{}{}
	}
	for _, col := range cte.Aliascolnames {
		if s := col.GetString_(); s != nil {
			refs.cteColumns[fold(s.Sval)] = struct{}{}
		}
	}
	if cte.Ctequery == nil {
		return
	}
	if sel := cte.Ctequery.GetSelectStmt(); sel != nil {
		for _, target := range sel.TargetList {
			if rt := target.GetResTarget(); rt != nil && rt.Name != "" {
				refs.cteColumns[fold(rt.Name)] = struct{}{}
			}
		}
	}
}

// collectColumns walks the tree recording real column references. inAlias
// flags that the current subtree is the defining expression of a
// projection alias; such references are alias internals, not reads of
// stored columns.
func (refs *referenceSets) collectColumns(n proto.Message, inAlias bool) {
	switch node := n.(type) {
	case *pg_query.ResTarget:
		if node.Name != "" {
			inAlias = true
		}
	case *pg_query.ColumnRef:
		if name, ok := columnRefName(node); ok && !inAlias {
			folded := fold(name)
			if _, isAlias := refs.selectAliases[folded]; isAlias {
				break
			}
			if _, isCTECol := refs.cteColumns[folded]; isCTECol {
				break
			}
			refs.realColumns[folded] = struct{}{}
		}
	}
	for _, child := range children(n.ProtoReflect()) {
		refs.collectColumns(child.Interface(), inAlias)
	}
}

// columnRefName extracts the column name from a ColumnRef. For a qualified
// reference the last field is the column; star references carry no column
// name.
func columnRefName(ref *pg_query.ColumnRef) (string, bool) {
	if len(ref.Fields) == 0 {
		return "", false
	}
	last := ref.Fields[len(ref.Fields)-1]
	if last.GetAStar() != nil {
		return "", false
	}
	if s := last.GetString_(); s != nil && s.Sval != "" {
		return s.Sval, true
	}
	return "", false
}
