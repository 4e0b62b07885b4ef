package allowlist

import "context"

// Repository persists allow-list entries keyed by subject id.
type Repository interface {
	Exists(ctx context.Context, subjectID string) (bool, error)

	// InsertIfAbsent stores e unless the subject is already present, in
	// which case the stored entry is left untouched. It reports whether a
	// row was created.
	InsertIfAbsent(ctx context.Context, e Entry) (bool, error)

	// FindBySubjectID returns nil, nil when the subject is absent.
	FindBySubjectID(ctx context.Context, subjectID string) (*Entry, error)
}
