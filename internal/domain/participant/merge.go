package participant

import (
	"sort"
	"strings"
)

// Stats summarizes a merge.
type Stats struct {
	Live       int `json:"live"`
	Imported   int `json:"imported"`
	Merged     int `json:"merged"`
	Collisions int `json:"collisions"`
	Skipped    int `json:"skipped"`
}

// MergeResult holds merged participants keyed by identity.
type MergeResult struct {
	byIdentity map[string]*Record
	Stats      Stats
}

// Merge folds live records and then imported records into one record per
// identity.
//
// On collision the three event sets are unioned, each scalar field keeps the
// value already present unless it is empty, and provenance becomes Merged
// when the two records came from different sources. Event sets do not depend
// on input order. Scalar fields do: live records are folded first, so a live
// value wins over an imported one whenever both are set, and swapping the two
// arguments changes the result.
//
// Records with an empty identity (no chest number and no name) are skipped.
func Merge(live, imported []Record) *MergeResult {
	res := &MergeResult{byIdentity: make(map[string]*Record, len(live)+len(imported))}
	for _, r := range live {
		res.add(r)
	}
	for _, r := range imported {
		res.add(r)
	}
	for _, r := range res.byIdentity {
		switch r.Provenance {
		case Live:
			res.Stats.Live++
		case Imported:
			res.Stats.Imported++
		case Merged:
			res.Stats.Merged++
		}
	}
	return res
}

func (m *MergeResult) add(in Record) {
	id := in.Identity()
	if id == "" {
		m.Stats.Skipped++
		return
	}
	cur, ok := m.byIdentity[id]
	if !ok {
		c := clone(in)
		m.byIdentity[id] = &c
		return
	}
	m.Stats.Collisions++
	cur.FullName = prefer(cur.FullName, in.FullName)
	cur.Team = prefer(cur.Team, in.Team)
	cur.CICNumber = prefer(cur.CICNumber, in.CICNumber)
	cur.ChestNumber = prefer(cur.ChestNumber, in.ChestNumber)
	cur.OnStage.Union(in.OnStage)
	cur.OffStage.Union(in.OffStage)
	cur.General.Union(in.General)
	if cur.Provenance != in.Provenance {
		cur.Provenance = Merged
	}
}

func prefer(existing, incoming string) string {
	if strings.TrimSpace(existing) != "" {
		return existing
	}
	return incoming
}

func clone(r Record) Record {
	out := r
	out.OnStage = make(EventSet, len(r.OnStage))
	out.OnStage.Union(r.OnStage)
	out.OffStage = make(EventSet, len(r.OffStage))
	out.OffStage.Union(r.OffStage)
	out.General = make(EventSet, len(r.General))
	out.General.Union(r.General)
	return out
}

// Len returns the number of distinct participants.
func (m *MergeResult) Len() int {
	return len(m.byIdentity)
}

// Get returns the merged record for identity.
func (m *MergeResult) Get(identity string) (Record, bool) {
	r, ok := m.byIdentity[identity]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Records flattens the result sorted by identity.
func (m *MergeResult) Records() []Record {
	out := make([]Record, 0, len(m.byIdentity))
	for _, r := range m.byIdentity {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity() < out[j].Identity() })
	return out
}
