// Package participant builds the canonical participant view from live
// registrations and imported spreadsheet rows.
package participant

import (
	"sort"
	"strings"

	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/normalize"
)

// Provenance says which source a record came from.
type Provenance string

// Provenances.
const (
	Live     Provenance = "live"
	Imported Provenance = "imported"
	Merged   Provenance = "merged"
)

// EventSet is a set of normalized event names.
type EventSet map[string]struct{}

// NewEventSet normalizes names into a set. Empty names are dropped.
func NewEventSet(names ...string) EventSet {
	s := make(EventSet, len(names))
	s.Add(names...)
	return s
}

// Add normalizes and inserts names. Each name may itself be a comma list.
func (s EventSet) Add(names ...string) {
	for _, n := range names {
		for _, tok := range normalize.SplitEvents(n) {
			s[tok] = struct{}{}
		}
	}
}

// Union adds every member of o to s.
func (s EventSet) Union(o EventSet) {
	for k := range o {
		s[k] = struct{}{}
	}
}

// Has reports whether the normalized form of name is in the set.
func (s EventSet) Has(name string) bool {
	_, ok := s[normalize.EventName(name)]
	return ok
}

// Sorted returns the members in ascending order.
func (s EventSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Record is one participant.
type Record struct {
	FullName    string
	CICNumber   string
	ChestNumber string
	Team        string
	OnStage     EventSet
	OffStage    EventSet
	General     EventSet
	Provenance  Provenance
}

// Identity is the merge key of the record.
func (r Record) Identity() string {
	return ResolveIdentity(r.ChestNumber, r.FullName)
}

// ResolveIdentity returns the trimmed chest number unless it is empty or the
// literal "0"; otherwise the trimmed, lowercased full name.
//
// Two students with no chest number and the same name resolve to the same
// identity.
func ResolveIdentity(chestNumber, fullName string) string {
	if c := strings.TrimSpace(chestNumber); c != "" && c != "0" {
		return c
	}
	return strings.ToLower(strings.TrimSpace(fullName))
}

// FromRegistration converts a live registration document.
func FromRegistration(reg model.Registration) Record {
	return Record{
		FullName:    strings.TrimSpace(reg.FullName),
		CICNumber:   strings.TrimSpace(reg.CICNumber),
		ChestNumber: strings.TrimSpace(reg.ChestNumber),
		Team:        strings.TrimSpace(reg.Team),
		OnStage:     NewEventSet(reg.OnStageEvents...),
		OffStage:    NewEventSet(reg.OffStageEvents...),
		General:     NewEventSet(reg.GeneralEvents...),
		Provenance:  Live,
	}
}

// FromRow converts one spreadsheet row using the alias table.
func FromRow(table normalize.AliasTable, row normalize.Row) Record {
	return Record{
		FullName:    table.Get(row, normalize.FieldFullName),
		CICNumber:   table.Get(row, normalize.FieldCICNumber),
		ChestNumber: table.Get(row, normalize.FieldChestNumber),
		Team:        table.Get(row, normalize.FieldTeam),
		OnStage:     NewEventSet(table.Get(row, normalize.FieldOnStage)),
		OffStage:    NewEventSet(table.Get(row, normalize.FieldOffStage)),
		General:     NewEventSet(table.Get(row, normalize.FieldGeneral)),
		Provenance:  Imported,
	}
}

// View is the JSON shape of a merged participant.
type View struct {
	Identity       string     `json:"identity"`
	FullName       string     `json:"fullName"`
	CICNumber      string     `json:"cicNumber,omitempty"`
	ChestNumber    string     `json:"chestNumber,omitempty"`
	Team           string     `json:"team,omitempty"`
	OnStageEvents  []string   `json:"onStageEvents"`
	OffStageEvents []string   `json:"offStageEvents"`
	GeneralEvents  []string   `json:"generalEvents"`
	Provenance     Provenance `json:"provenance"`
}

// View renders r with sorted event lists.
func (r Record) View() View {
	return View{
		Identity:       r.Identity(),
		FullName:       r.FullName,
		CICNumber:      r.CICNumber,
		ChestNumber:    r.ChestNumber,
		Team:           r.Team,
		OnStageEvents:  r.OnStage.Sorted(),
		OffStageEvents: r.OffStage.Sorted(),
		GeneralEvents:  r.General.Sorted(),
		Provenance:     r.Provenance,
	}
}

// Filter selects participants for listing. Empty fields match everything.
type Filter struct {
	Team  string
	Event string
}

// Match reports whether r passes the filter. Team compares ignoring case;
// Event matches any of the three event sets.
func (f Filter) Match(r Record) bool {
	if f.Team != "" && !strings.EqualFold(strings.TrimSpace(f.Team), r.Team) {
		return false
	}
	if f.Event != "" && !r.OnStage.Has(f.Event) && !r.OffStage.Has(f.Event) && !r.General.Has(f.Event) {
		return false
	}
	return true
}
