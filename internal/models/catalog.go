package models

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MechanicsCompound is the mechanics classification of multi-joint exercises.
const MechanicsCompound = "Compound"

// Exercise is a row of the exercise catalog. The catalog is read-only to the
// generator; it is filled by the catalog ingest endpoint.
type Exercise struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	TargetMuscleGroup string    `json:"target_muscle_group"`
	PrimaryEquipment  string    `json:"primary_equipment"`
	Mechanics         *string   `json:"mechanics,omitempty"`
	VideoLink         *string   `json:"video_link,omitempty"`
}

// CatalogRow is a parsed catalog entry ready for upsert into the exercises table.
type CatalogRow struct {
	Name              string
	TargetMuscleGroup string
	PrimaryEquipment  string
	Mechanics         string
	VideoLink         string
}

// EquipmentCount is a distinct primary equipment value with the number of
// catalog exercises using it.
type EquipmentCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NormalizeEquipment title-cases equipment names, merging counts of names
// that differ only in case, and sorts the result by name. Blank names are
// dropped.
func NormalizeEquipment(counts []EquipmentCount) []EquipmentCount {
	caser := cases.Title(language.English)
	index := map[string]int{}
	list := []EquipmentCount{}
	for _, c := range counts {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		name = caser.String(name)
		if i, ok := index[name]; ok {
			list[i].Count += c.Count
			continue
		}
		index[name] = len(list)
		list = append(list, EquipmentCount{Name: name, Count: c.Count})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
