package normalize

import "strings"

// typoFixes are applied in order after uppercasing. No replacement may
// contain any pattern, so a second pass is a no-op.
var typoFixes = []struct{ from, to string }{
	{"SHORT VLOGING", "SHORT VLOGGING"},
	{"Q & H", "Q AND H"},
	{"Q&H", "Q AND H"},
	{"CALLIGRAPY", "CALLIGRAPHY"},
	{"MAPPILAPATTU", "MAPPILAPPATTU"},
	{"ELOCUTON", "ELOCUTION"},
	{"QAWALI", "QAWWALI"},
	{"WRTING", "WRITING"},
}

var typoReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(typoFixes)*2)
	for _, f := range typoFixes {
		pairs = append(pairs, f.from, f.to)
	}
	return strings.NewReplacer(pairs...)
}()

// clean uppercases, collapses whitespace runs and fixes known typos.
func clean(raw string) string {
	s := strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
	return typoReplacer.Replace(s)
}

// SplitEvents returns the cleaned, non-empty event tokens of a comma
// separated string, in input order. Duplicates are kept.
func SplitEvents(raw string) []string {
	parts := strings.Split(clean(raw), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EventString normalizes a raw event list and rejoins it with ", ".
// EventString(EventString(x)) == EventString(x).
func EventString(raw string) string {
	return strings.Join(SplitEvents(raw), ", ")
}

// EventName normalizes a single event name. Commas are treated as
// ordinary characters.
func EventName(raw string) string {
	return clean(raw)
}
