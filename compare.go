package main

import "strings"

// ComparisonStatus describes whether a table pair could be compared at all.
type ComparisonStatus string

const (
	ComparisonDone       ComparisonStatus = "compared"
	ComparisonSourceOnly ComparisonStatus = "source_only"
	ComparisonTargetOnly ComparisonStatus = "target_only"
	ComparisonNotFound   ComparisonStatus = "not_found"
)

// ComplexityLevel buckets a migration complexity score.
type ComplexityLevel string

const (
	ComplexityLow      ComplexityLevel = "low"
	ComplexityMedium   ComplexityLevel = "medium"
	ComplexityHigh     ComplexityLevel = "high"
	ComplexityCritical ComplexityLevel = "critical"
)

// SchemaComparison is the result of diffing one source table against its
// target model.
type SchemaComparison struct {
	Table      string
	Status     ComparisonStatus
	Fields     []FieldComparisonResult
	Complexity int
	Level      ComplexityLevel
}

// compareTables classifies every field of the source table against the
// target. Fields present on both sides are compatible or modified; fields
// on one side only become renamed pairs when a plausible counterpart
// exists, otherwise removed or added. renameThreshold gates rename
// detection, 0..1.
func compareTables(source, target TableSchema, renameThreshold float64) SchemaComparison {
	cmp := SchemaComparison{Table: source.Name}

	switch {
	case len(source.Columns) == 0 && len(target.Columns) == 0:
		cmp.Status = ComparisonNotFound
		return cmp
	case len(target.Columns) == 0:
		cmp.Status = ComparisonSourceOnly
		return cmp
	case len(source.Columns) == 0:
		cmp.Status = ComparisonTargetOnly
		return cmp
	}
	cmp.Status = ComparisonDone

	targetByName := make(map[string]ColumnSchema, len(target.Columns))
	for _, c := range target.Columns {
		targetByName[c.Name] = c
	}
	sourceByName := make(map[string]ColumnSchema, len(source.Columns))
	for _, c := range source.Columns {
		sourceByName[c.Name] = c
	}

	var removed []ColumnSchema
	for _, sc := range source.Columns {
		tc, ok := targetByName[sc.Name]
		if !ok {
			removed = append(removed, sc)
			continue
		}
		diffs := diffColumns(sc, tc)
		res := FieldComparisonResult{FieldName: sc.Name, Status: FieldCompatible}
		if len(diffs) > 0 {
			res.Status = FieldModified
			res.ChangeDetails = diffs
		}
		cmp.Fields = append(cmp.Fields, res)
	}

	var added []ColumnSchema
	for _, tc := range target.Columns {
		if _, ok := sourceByName[tc.Name]; !ok {
			added = append(added, tc)
		}
	}

	// Pair up removed and added fields as renames: greedy first match on
	// equal type and relation, gated by name similarity.
	consumed := make(map[string]bool)
	for _, sc := range removed {
		matched := false
		for _, tc := range added {
			if consumed[tc.Name] {
				continue
			}
			if sc.DataType != tc.DataType || sc.ForeignTable != tc.ForeignTable {
				continue
			}
			score := nameSimilarity(sc.Name, tc.Name)
			if score <= renameThreshold {
				continue
			}
			cmp.Fields = append(cmp.Fields, FieldComparisonResult{
				FieldName:  sc.Name,
				Status:     FieldRenamed,
				RenamedTo:  tc.Name,
				Confidence: int(score * 100),
			})
			consumed[tc.Name] = true
			matched = true
			break
		}
		if !matched {
			cmp.Fields = append(cmp.Fields, FieldComparisonResult{
				FieldName: sc.Name,
				Status:    FieldRemoved,
			})
		}
	}
	for _, tc := range added {
		if consumed[tc.Name] {
			continue
		}
		cmp.Fields = append(cmp.Fields, FieldComparisonResult{
			FieldName:    tc.Name,
			Status:       FieldAdded,
			DefaultValue: defaultForType(tc.DataType),
		})
	}

	cmp.Complexity = complexityScore(cmp.Fields, added, consumed)
	cmp.Level = complexityLevel(cmp.Complexity)
	return cmp
}

// diffColumns reports attribute-level differences. Type changes, relation
// changes, and optional-to-required transitions are breaking; everything
// else is informational.
func diffColumns(src, dst ColumnSchema) []AttributeDiff {
	var diffs []AttributeDiff
	if src.DataType != dst.DataType {
		diffs = append(diffs, AttributeDiff{
			Attribute: "type",
			Source:    src.DataType,
			Target:    dst.DataType,
			Breaking:  true,
		})
	}
	if src.ForeignTable != dst.ForeignTable {
		diffs = append(diffs, AttributeDiff{
			Attribute: "relation",
			Source:    src.ForeignTable,
			Target:    dst.ForeignTable,
			Breaking:  true,
		})
	}
	if src.Nullable != dst.Nullable {
		diffs = append(diffs, AttributeDiff{
			Attribute: "required",
			Source:    !src.Nullable,
			Target:    !dst.Nullable,
			Breaking:  src.Nullable && !dst.Nullable,
		})
	}
	if src.MaxLength != dst.MaxLength {
		diffs = append(diffs, AttributeDiff{
			Attribute: "max_length",
			Source:    src.MaxLength,
			Target:    dst.MaxLength,
		})
	}
	return diffs
}

// nameSimilarity scores two field names in 0..1. Containment after
// normalization scores a flat 0.8; otherwise the Jaccard index of the
// character sets decides.
func nameSimilarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.8
	}

	setA := make(map[rune]bool)
	for _, r := range na {
		setA[r] = true
	}
	setB := make(map[rune]bool)
	for _, r := range nb {
		setB[r] = true
	}
	inter := 0
	for r := range setA {
		if setB[r] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	for _, sep := range []string{"_", "-", " ", "."} {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}

// defaultForType picks a safe fill-in value for fields added on the target
// side.
func defaultForType(dataType string) any {
	switch dataType {
	case "varchar", "char", "text", "string":
		return ""
	case "integer", "int", "bigint", "smallint", "float", "double", "decimal", "numeric", "monetary":
		return 0
	case "boolean", "bool":
		return false
	default:
		return nil
	}
}

// complexityScore estimates how risky a migration is, 0..100. Breaking
// changes dominate, then modified fields, then new required fields.
func complexityScore(fields []FieldComparisonResult, added []ColumnSchema, consumed map[string]bool) int {
	total := len(fields)
	if total == 0 {
		return 0
	}

	breaking, modified := 0, 0
	for _, f := range fields {
		if f.Status == FieldModified {
			modified++
		}
		for _, d := range f.ChangeDetails {
			if d.Breaking {
				breaking++
				break
			}
		}
	}

	newRequired := 0
	for _, tc := range added {
		if !consumed[tc.Name] && !tc.Nullable {
			newRequired++
		}
	}

	score := 40*float64(breaking)/float64(total) +
		30*float64(modified)/float64(total)
	reqPenalty := float64(5 * newRequired)
	if reqPenalty > 30 {
		reqPenalty = 30
	}
	score += reqPenalty
	if score > 100 {
		score = 100
	}
	return int(score)
}

func complexityLevel(score int) ComplexityLevel {
	switch {
	case score < 20:
		return ComplexityLow
	case score < 50:
		return ComplexityMedium
	case score < 80:
		return ComplexityHigh
	default:
		return ComplexityCritical
	}
}
