package members

import "context"

// RosterStore is the persisted member roster.
type RosterStore interface {
	ListRoster(ctx context.Context, f Filter) ([]Member, error)
	InsertMember(ctx context.Context, m Member) (Member, error)
	UpsertRosterFields(ctx context.Context, id int64, fields map[string]string) error
}

// Filter narrows ListRoster; Search matches names, email and member
// number case-insensitively.
type Filter struct {
	Search string
}
