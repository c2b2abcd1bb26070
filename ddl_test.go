package main

import (
	"strings"
	"testing"
)

func TestScaffoldDDL(t *testing.T) {
	tables := []TableSchema{
		{Name: "legacyOrders", Columns: []ColumnSchema{
			{Name: "id", DataType: "int", IsPrimaryKey: true},
			{Name: "orderRef", DataType: "varchar", MaxLength: 64},
			{Name: "total", DataType: "decimal", Nullable: true},
			{Name: "placedAt", DataType: "datetime", Nullable: true},
			{Name: "notes", DataType: "text", Nullable: true},
			{Name: "paid", DataType: "tinyint", Nullable: true},
		}},
		{Name: "customers"},
	}

	stmts := scaffoldDDL(tables, []string{"legacyOrders", "unknown_table"})
	if len(stmts) != 1 {
		t.Fatalf("scaffoldDDL returned %d statements, want 1", len(stmts))
	}

	ddl := stmts[0]
	wantLines := []string{
		`CREATE TABLE legacy_orders (`,
		`  id bigint GENERATED ALWAYS AS IDENTITY NOT NULL PRIMARY KEY,`,
		`  order_ref varchar(64) NOT NULL,`,
		`  total double precision,`,
		`  placed_at timestamptz,`,
		`  notes text,`,
		`  paid bigint`,
		`)`,
	}
	if got, want := ddl, strings.Join(wantLines, "\n"); got != want {
		t.Errorf("scaffoldDDL mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestScaffoldColumnTypeFallsBackToText(t *testing.T) {
	got := scaffoldColumnType(ColumnSchema{Name: "payload", DataType: "jsonb"})
	if got != "text" {
		t.Errorf("scaffoldColumnType(jsonb) = %q, want %q", got, "text")
	}
}
