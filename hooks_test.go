package main

import (
	"reflect"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "two statements",
			sql:  "DELETE FROM a; DELETE FROM b;",
			want: []string{"DELETE FROM a", "DELETE FROM b"},
		},
		{
			name: "trailing statement without semicolon",
			sql:  "UPDATE t SET x = 1",
			want: []string{"UPDATE t SET x = 1"},
		},
		{
			name: "semicolon inside quotes",
			sql:  "INSERT INTO t VALUES ('a;b'); SELECT 1;",
			want: []string{"INSERT INTO t VALUES ('a;b')", "SELECT 1"},
		},
		{
			name: "escaped quote",
			sql:  "INSERT INTO t VALUES ('it''s; fine'); SELECT 2;",
			want: []string{"INSERT INTO t VALUES ('it''s; fine')", "SELECT 2"},
		},
		{
			name: "empty entries skipped",
			sql:  ";;\n  ;\nSELECT 3;",
			want: []string{"SELECT 3"},
		},
		{
			name: "empty input",
			sql:  "   \n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitStatements(tt.sql)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitStatements(%q) = %v, want %v", tt.sql, got, tt.want)
			}
		})
	}
}
