// Package catalog classifies festival events by stage type and general flag
// using static tables.
package catalog

import (
	"sort"
	"strings"
)

// StageType tells where an event is performed.
type StageType string

// Stage types. Unknown is returned for names missing from the table.
const (
	OnStage  StageType = "onStage"
	OffStage StageType = "offStage"
	Unknown  StageType = "unknown"
)

// Valid reports whether s is OnStage or OffStage.
func (s StageType) Valid() bool {
	return s == OnStage || s == OffStage
}

var stages = map[string]StageType{
	"MIME":             OnStage,
	"QUIZ":             OnStage,
	"ELOCUTION":        OnStage,
	"GROUP SONG":       OnStage,
	"MAPPILAPPATTU":    OnStage,
	"SPEECH ENGLISH":   OnStage,
	"SPEECH MALAYALAM": OnStage,
	"QAWWALI":          OnStage,
	"DEBATE":           OnStage,
	"Q AND H":          OnStage,
	"ESSAY WRITING":    OffStage,
	"POEM WRITING":     OffStage,
	"STORY WRITING":    OffStage,
	"CALLIGRAPHY":      OffStage,
	"SHORT VLOGGING":   OffStage,
	"DIGITAL PAINTING": OffStage,
	"PENCIL DRAWING":   OffStage,
	"PHOTOGRAPHY":      OffStage,
}

// General events are scored on the general table regardless of category.
var general = map[string]struct{}{
	"GROUP SONG":     {},
	"QAWWALI":        {},
	"SHORT VLOGGING": {},
}

func key(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Classify returns the stage type of an event name. Matching is exact after
// trimming and ignores case.
func Classify(name string) StageType {
	if st, ok := stages[key(name)]; ok {
		return st
	}
	return Unknown
}

// IsGeneral reports whether name is on the general-event allow-list.
func IsGeneral(name string) bool {
	_, ok := general[key(name)]
	return ok
}

// Entry is one known event.
type Entry struct {
	Name      string    `json:"name"`
	StageType StageType `json:"stageType"`
	IsGeneral bool      `json:"isGeneral"`
}

// Entries lists the known events sorted by name.
func Entries() []Entry {
	out := make([]Entry, 0, len(stages))
	for name, st := range stages {
		out = append(out, Entry{Name: name, StageType: st, IsGeneral: IsGeneral(name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
