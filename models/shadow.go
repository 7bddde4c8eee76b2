package models

import (
	"github.com/rohanthewiz/logger"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ShadowedChange describes an in-memory record that a remote snapshot replaced
// with different content. Remote wins; the change is reported so the loss of
// the local edit is visible in the logs.
type ShadowedChange struct {
	Collection Collection `json:"collection"`
	ID         string     `json:"id"`
	Inserted   int        `json:"inserted"`
	Deleted    int        `json:"deleted"`
	Delta      string     `json:"delta"`
}

func diffText(before, after string) (inserted, deleted int, delta string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			deleted += len([]rune(d.Text))
		}
	}
	return inserted, deleted, dmp.DiffToDelta(diffs)
}

// shadowCandidate is a record a snapshot is about to replace with different
// text. Candidates are collected under the store lock with a plain comparison;
// the diff itself runs after the lock is released.
type shadowCandidate struct {
	collection    Collection
	id            string
	before, after string
}

func shadowedCategories(current, remote []Category) []shadowCandidate {
	var out []shadowCandidate
	for _, r := range remote {
		i := findByID(current, r.ID)
		if i < 0 {
			continue
		}
		before := current[i].Title + "\n" + current[i].Description
		after := r.Title + "\n" + r.Description
		if before != after {
			out = append(out, shadowCandidate{CollectionModules, r.ID, before, after})
		}
	}
	return out
}

func shadowedNotes(current, remote []Note) []shadowCandidate {
	var out []shadowCandidate
	for _, r := range remote {
		i := findByID(current, r.ID)
		if i < 0 {
			continue
		}
		before := current[i].Title + "\n" + current[i].Content
		after := r.Title + "\n" + r.Content
		if before != after {
			out = append(out, shadowCandidate{CollectionItems, r.ID, before, after})
		}
	}
	return out
}

func diffShadowed(cands []shadowCandidate) []ShadowedChange {
	if len(cands) == 0 {
		return nil
	}
	changes := make([]ShadowedChange, 0, len(cands))
	for _, c := range cands {
		ins, del, delta := diffText(c.before, c.after)
		changes = append(changes, ShadowedChange{
			Collection: c.collection, ID: c.id, Inserted: ins, Deleted: del, Delta: delta,
		})
	}
	return changes
}

func logShadowed(changes []ShadowedChange) {
	for _, c := range changes {
		logger.Debug("Remote record replaced differing local copy",
			"collection", string(c.Collection),
			"id", c.ID,
			"inserted", c.Inserted,
			"deleted", c.Deleted,
		)
	}
}
