package main

import "strings"

var (
	configNameHints      = []string{"config", "setting", "param", "preference"}
	transactionNameHints = []string{"order", "invoice", "payment", "transaction", "move", "entry", "log", "event", "history"}
)

// categorizeTable assigns a heuristic role to a table for analysis
// summaries. incoming is the number of relationships pointing at the table.
func categorizeTable(t TableSchema, rels []Relationship, incoming int) TableCategory {
	lower := strings.ToLower(t.Name)

	for _, hint := range configNameHints {
		if strings.Contains(lower, hint) {
			return CategoryConfig
		}
	}

	// A narrow table that is mostly foreign keys is a join table.
	outgoing := 0
	for _, r := range rels {
		if r.FromTable == t.Name {
			outgoing++
		}
	}
	if outgoing >= 2 && len(t.Columns) <= outgoing+2 {
		return CategoryRelation
	}

	for _, hint := range transactionNameHints {
		if strings.Contains(lower, hint) {
			return CategoryTransaction
		}
	}

	if incoming > 0 {
		return CategoryMaster
	}
	return CategoryOther
}

// categorizeTables maps table name to category for a whole snapshot.
func categorizeTables(tables []TableSchema, rels []Relationship) map[string]TableCategory {
	incoming := make(map[string]int)
	for _, r := range rels {
		if r.FromTable != r.ToTable {
			incoming[r.ToTable]++
		}
	}
	out := make(map[string]TableCategory, len(tables))
	for _, t := range tables {
		out[t.Name] = categorizeTable(t, rels, incoming[t.Name])
	}
	return out
}
