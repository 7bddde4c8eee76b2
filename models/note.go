package models

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// NoteKind tags how a note was produced.
type NoteKind string

const (
	KindText    NoteKind = "text"
	KindSummary NoteKind = "summary"
	KindQA      NoteKind = "qa"
	KindGuide   NoteKind = "guide"
)

// Valid reports whether k is one of the known kinds.
func (k NoteKind) Valid() bool {
	switch k {
	case KindText, KindSummary, KindQA, KindGuide:
		return true
	}
	return false
}

// maxDerivedTitleRunes caps titles derived from note content.
const maxDerivedTitleRunes = 40

// Note is a content item belonging to a category. The remote collection for notes is "items".
// ModuleID may reference a category that no longer exists; such notes are kept as orphans.
type Note struct {
	ID        string   `json:"id"`
	ModuleID  string   `json:"moduleId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Kind      NoteKind `json:"type"`
	CreatedAt int64    `json:"createdAt"`
}

// RecordID implements Record.
func (n Note) RecordID() string { return n.ID }

// NoteInput is used for creating notes. Title is derived from Content when empty.
type NoteInput struct {
	ModuleID string   `json:"moduleId"`
	Title    string   `json:"title,omitempty"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	Kind     NoteKind `json:"type,omitempty"`
}

// NoteUpdate carries the editable note fields. Nil fields are left unchanged.
type NoteUpdate struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// Validate checks the fields a note cannot be created without.
func (in NoteInput) Validate() error {
	if strings.TrimSpace(in.ModuleID) == "" {
		return newValidationError("moduleId", "a category must be selected")
	}
	if strings.TrimSpace(in.Content) == "" {
		return newValidationError("content", "note content is required")
	}
	if in.Kind != "" && !in.Kind.Valid() {
		return newValidationError("type", "unknown note type "+string(in.Kind))
	}
	return nil
}

// DeriveTitle builds a title from the first line of content:
// trimmed, cut to 40 characters and upper-cased.
func DeriveTitle(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) > maxDerivedTitleRunes {
		line = string([]rune(line)[:maxDerivedTitleRunes])
	}
	return strings.ToUpper(strings.TrimSpace(line))
}

// NormalizeTags trims tags, drops empty ones and removes case-insensitive duplicates,
// keeping the first spelling seen.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func (n Note) document() Document {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return Document{
		ID: n.ID,
		Fields: map[string]any{
			"id":        n.ID,
			"moduleId":  n.ModuleID,
			"title":     n.Title,
			"content":   n.Content,
			"tags":      tags,
			"type":      string(n.Kind),
			"createdAt": n.CreatedAt,
		},
	}
}

func noteFromDocument(doc Document) Note {
	kind := NoteKind(fieldString(doc.Fields, "type"))
	if !kind.Valid() {
		kind = KindText
	}
	tags := fieldStrings(doc.Fields, "tags")
	if tags == nil {
		tags = []string{}
	}
	return Note{
		ID:        doc.ID,
		ModuleID:  fieldString(doc.Fields, "moduleId"),
		Title:     fieldString(doc.Fields, "title"),
		Content:   fieldString(doc.Fields, "content"),
		Tags:      tags,
		Kind:      kind,
		CreatedAt: fieldInt64(doc.Fields, "createdAt"),
	}
}

// SortNotes orders notes newest first.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].CreatedAt != notes[j].CreatedAt {
			return notes[i].CreatedAt > notes[j].CreatedAt
		}
		return notes[i].ID > notes[j].ID
	})
}
