package schedule

import (
	"strconv"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

const (
	uidPrefix       = "uid:"
	compositePrefix = "cmp:"
)

// UIDIdentity is the identity of a record carrying a source uid.
func UIDIdentity(uid string) string { return uidPrefix + uid }

// CompositeKey builds the fallback identity from date and folded team names.
func CompositeKey(date, home, away string) string {
	return compositePrefix + date + "|" + textnorm.FoldTeam(home) + "|" + textnorm.FoldTeam(away)
}

// IdentityResolver assigns identities within one import batch. A composite
// key already handed out earlier in the same batch gets the candidate's
// zero-based source index appended, so two fixtures with identical date and
// teams stay distinct while re-imports of the same file still line up.
type IdentityResolver struct {
	used map[string]bool
}

func NewIdentityResolver() *IdentityResolver {
	return &IdentityResolver{used: make(map[string]bool)}
}

func (ir *IdentityResolver) Resolve(r Record, index int) string {
	if r.ExternalUID != "" {
		return UIDIdentity(r.ExternalUID)
	}
	key := r.Composite()
	if ir.used[key] {
		key += "#" + strconv.Itoa(index)
	}
	ir.used[key] = true
	return key
}
