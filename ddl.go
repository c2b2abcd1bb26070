package main

import (
	"fmt"
	"strings"
)

// scaffoldDDL generates CREATE TABLE statements for source tables that found
// no target model, so an operator can create the missing tables and re-run
// the mapping. Source types are collapsed to their family before picking a
// PostgreSQL type.
func scaffoldDDL(tables []TableSchema, unmapped []string) []string {
	byName := make(map[string]TableSchema, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	var stmts []string
	for _, name := range unmapped {
		t, ok := byName[name]
		if !ok {
			continue
		}
		stmts = append(stmts, generateCreateTable(t))
	}
	return stmts
}

func generateCreateTable(t TableSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", pgIdent(toSnakeCase(t.Name)))

	for i, col := range t.Columns {
		fmt.Fprintf(&b, "  %s %s", pgIdent(toSnakeCase(col.Name)), scaffoldColumnType(col))
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
		if col.IsPrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
		if i < len(t.Columns)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString(")")
	return b.String()
}

func scaffoldColumnType(col ColumnSchema) string {
	if col.IsPrimaryKey && typeFamily(col.DataType) == "integer" {
		return "bigint GENERATED ALWAYS AS IDENTITY"
	}
	switch typeFamily(col.DataType) {
	case "integer":
		return "bigint"
	case "float":
		return "double precision"
	case "varchar":
		if col.MaxLength > 0 {
			return fmt.Sprintf("varchar(%d)", col.MaxLength)
		}
		return "text"
	case "boolean":
		return "boolean"
	case "datetime":
		return "timestamptz"
	case "date":
		return "date"
	default:
		return "text"
	}
}
