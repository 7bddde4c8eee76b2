package models

// Record is implemented by every entity that is reconciled by id.
type Record interface {
	RecordID() string
}

// Merge combines the in-memory records with a complete remote snapshot.
//
// Every remote record is kept. A current record survives only when no remote
// record shares its id, so the remote copy always wins and records that exist
// only locally are never discarded. An empty snapshot returns current as is.
// The result holds remote records first (in snapshot order) followed by the
// surviving local-only records (in their existing order).
func Merge[T Record](current, remote []T) []T {
	if len(remote) == 0 {
		return current
	}

	remoteIDs := make(map[string]struct{}, len(remote))
	merged := make([]T, 0, len(remote)+len(current))
	for _, r := range remote {
		remoteIDs[r.RecordID()] = struct{}{}
		merged = append(merged, r)
	}
	for _, c := range current {
		if _, shadowed := remoteIDs[c.RecordID()]; !shadowed {
			merged = append(merged, c)
		}
	}
	return merged
}

// findByID returns the index of the record with id, or -1.
func findByID[T Record](records []T, id string) int {
	for i, r := range records {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}

// upsertByID replaces the record sharing rec's id, or appends rec.
func upsertByID[T Record](records []T, rec T) []T {
	if i := findByID(records, rec.RecordID()); i >= 0 {
		out := make([]T, len(records))
		copy(out, records)
		out[i] = rec
		return out
	}
	out := make([]T, 0, len(records)+1)
	out = append(out, records...)
	return append(out, rec)
}

// removeByID returns records without the one carrying id, and whether it was present.
func removeByID[T Record](records []T, id string) ([]T, bool) {
	i := findByID(records, id)
	if i < 0 {
		return records, false
	}
	out := make([]T, 0, len(records)-1)
	out = append(out, records[:i]...)
	return append(out, records[i+1:]...), true
}
