package allowlist

import "time"

// Entry approves one subject for session issuance. There is at most one
// entry per subject and entries are never removed by the gate.
type Entry struct {
	SubjectID string    `db:"subject_id" json:"-"`
	Note      string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewEntry(subjectID, note string, now time.Time) Entry {
	return Entry{SubjectID: subjectID, Note: note, CreatedAt: now}
}
