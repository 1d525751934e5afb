package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/meltforce/repforge/internal/models"
)

// Column names of a catalog export. Name, muscle group and equipment are required.
const (
	ColName        = "name"
	ColMuscleGroup = "target_muscle_group"
	ColEquipment   = "primary_equipment"
	ColMechanics   = "mechanics"
	ColVideoLink   = "video_link"
)

var requiredColumns = []string{ColName, ColMuscleGroup, ColEquipment}

// ParseResult holds parsed rows plus how many duplicate names were collapsed.
type ParseResult struct {
	Rows       []models.CatalogRow
	Duplicates int
}

// Parse reads a catalog CSV. Columns are matched by header name in any order;
// unknown columns are ignored. Rows without a name are skipped. When a name
// appears more than once the last row wins.
func Parse(r io.Reader) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty catalog file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing required column %q", c)
		}
	}

	field := func(record []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	result := &ParseResult{}
	index := map[string]int{}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		row := models.CatalogRow{
			Name:              field(record, ColName),
			TargetMuscleGroup: field(record, ColMuscleGroup),
			PrimaryEquipment:  field(record, ColEquipment),
			Mechanics:         field(record, ColMechanics),
			VideoLink:         field(record, ColVideoLink),
		}
		if row.Name == "" {
			continue
		}
		key := strings.ToLower(row.Name)
		if i, ok := index[key]; ok {
			result.Rows[i] = row
			result.Duplicates++
			continue
		}
		index[key] = len(result.Rows)
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}
