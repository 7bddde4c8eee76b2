package models

import "strings"

// UncategorizedModule is the filter value selecting notes whose category no longer exists.
const UncategorizedModule = "uncategorized"

// NoteFilter narrows a note listing. Zero-valued fields do not filter.
type NoteFilter struct {
	ModuleID string   `json:"moduleId,omitempty"`
	Query    string   `json:"q,omitempty"`
	Tag      string   `json:"tag,omitempty"`
	Kind     NoteKind `json:"type,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// FilterNotes returns the matching notes newest first. The query is a
// case-insensitive substring match against title or content. cats is needed
// to resolve the uncategorized filter.
func FilterNotes(notes []Note, cats []Category, f NoteFilter) []Note {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	tag := strings.ToLower(strings.TrimSpace(f.Tag))

	var known map[string]struct{}
	if f.ModuleID == UncategorizedModule {
		known = make(map[string]struct{}, len(cats))
		for _, c := range cats {
			known[c.ID] = struct{}{}
		}
	}

	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		switch {
		case f.ModuleID == UncategorizedModule:
			if _, ok := known[n.ModuleID]; ok {
				continue
			}
		case f.ModuleID != "" && n.ModuleID != f.ModuleID:
			continue
		}
		if f.Kind != "" && n.Kind != f.Kind {
			continue
		}
		if tag != "" && !hasTag(n.Tags, tag) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(n.Title), query) &&
			!strings.Contains(strings.ToLower(n.Content), query) {
			continue
		}
		out = append(out, n)
	}

	SortNotes(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func hasTag(tags []string, lowered string) bool {
	for _, t := range tags {
		if strings.ToLower(t) == lowered {
			return true
		}
	}
	return false
}

// CountByCategory returns the number of notes per category id.
func CountByCategory(notes []Note) map[string]int {
	counts := make(map[string]int)
	for _, n := range notes {
		counts[n.ModuleID]++
	}
	return counts
}
