package user

import (
	"context"

	"github.com/Abraxas-365/chatgate/pkg/kernel"
)

// Repository persists users keyed by internal id and external subject id.
type Repository interface {
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindBySubjectID(ctx context.Context, subjectID string) (*User, error)

	// Upsert inserts u, or refreshes the provider fields of the row with the
	// same SubjectID. It returns the stored row (with ID and CreatedAt).
	Upsert(ctx context.Context, u User) (*User, error)
}
