package normalize

import "strings"

// Canonical participant fields.
const (
	FieldFullName    = "fullName"
	FieldChestNumber = "chestNumber"
	FieldCICNumber   = "cicNumber"
	FieldTeam        = "team"
	FieldOnStage     = "onStageEvents"
	FieldOffStage    = "offStageEvents"
	FieldGeneral     = "generalEvents"
)

// AliasTable maps a canonical field to the raw header spellings accepted for it.
type AliasTable map[string][]string

// Default returns the built-in alias table. The result is a fresh copy.
func Default() AliasTable {
	return AliasTable{
		FieldFullName:    {"fullName", "NAME", "FULL NAME", "STUDENT NAME", "PARTICIPANT NAME"},
		FieldChestNumber: {"chestNumber", "CHEST NUMBER", "CHEST NO", "CHEST NO.", "CHEST"},
		FieldCICNumber:   {"cicNumber", "CIC NUMBER", "CIC NO", "CIC NO.", "CIC"},
		FieldTeam:        {"team", "TEAM", "TEAM NAME", "HOUSE"},
		FieldOnStage:     {"onStageEvents", "ON STAGE EVENTS", "ONSTAGE EVENTS", "ON STAGE", "ONSTAGE"},
		FieldOffStage:    {"offStageEvents", "OFF STAGE EVENTS", "OFFSTAGE EVENTS", "OFF STAGE", "OFFSTAGE"},
		FieldGeneral:     {"generalEvents", "GENERAL EVENTS", "GENERAL"},
	}
}

// WithOverrides returns a copy of t where configured spellings are tried
// before the existing ones. Field names match case-insensitively; unknown
// fields are added as-is.
func (t AliasTable) WithOverrides(overrides map[string][]string) AliasTable {
	out := make(AliasTable, len(t))
	for field, aliases := range t {
		out[field] = append([]string(nil), aliases...)
	}
	for field, extra := range overrides {
		canonical := field
		for known := range out {
			if strings.EqualFold(known, field) {
				canonical = known
				break
			}
		}
		merged := make([]string, 0, len(extra)+len(out[canonical]))
		seen := make(map[string]struct{}, cap(merged))
		for _, a := range append(append([]string(nil), extra...), out[canonical]...) {
			if _, dup := seen[a]; dup || strings.TrimSpace(a) == "" {
				continue
			}
			seen[a] = struct{}{}
			merged = append(merged, a)
		}
		out[canonical] = merged
	}
	return out
}

// Get resolves field in row using the table's aliases.
func (t AliasTable) Get(row Row, field string) string {
	aliases, ok := t[field]
	if !ok {
		return Lookup(row, field)
	}
	return Lookup(row, aliases...)
}
