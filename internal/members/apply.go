package members

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/metrics"
)

// Selection marks one entry for apply. A nil Fields slice selects every
// change of the entry; otherwise only the named fields are written.
type Selection struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields,omitempty"`
}

func (s Selection) allows(field string) bool {
	if s.Fields == nil {
		return true
	}
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

type ApplyResult struct {
	Created []Member `json:"created"`
	Updated int      `json:"updated"`
}

// Applier writes selected diff entries to the roster.
type Applier struct {
	store     RosterStore
	log       *logrus.Logger
	metrics   *metrics.Metrics
	newNumber func() string
}

func NewApplier(store RosterStore, log *logrus.Logger, m *metrics.Metrics) *Applier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Applier{store: store, log: log, metrics: m, newNumber: NewMemberNumber}
}

// NewMemberNumber returns a fresh member number such as "M-1A2B3C4D".
func NewMemberNumber() string {
	return "M-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Apply writes the selected entries in order and stops at the first store
// error; entries before it stay applied. Unselected entries and fields are
// left alone, and an empty value is never written.
func (a *Applier) Apply(ctx context.Context, entries []Entry, selections []Selection) (ApplyResult, error) {
	sel := make(map[string]Selection, len(selections))
	for _, s := range selections {
		sel[s.ID] = s
	}
	var res ApplyResult
	for _, e := range entries {
		s, ok := sel[e.ID]
		if !ok {
			continue
		}
		switch e.Kind {
		case KindNew:
			m, err := a.create(ctx, e, s)
			if err != nil {
				return res, err
			}
			res.Created = append(res.Created, m)
			a.metrics.Applied(string(KindNew))
		case KindUpdate:
			n, err := a.update(ctx, e, s)
			if err != nil {
				return res, err
			}
			if n > 0 {
				res.Updated++
				a.metrics.Applied(string(KindUpdate))
			}
		default:
			return res, fmt.Errorf("entry %s: unknown kind %q", e.ID, e.Kind)
		}
	}
	a.log.WithFields(logrus.Fields{"created": len(res.Created), "updated": res.Updated}).Info("member diff applied")
	return res, nil
}

func (a *Applier) create(ctx context.Context, e Entry, s Selection) (Member, error) {
	var m Member
	for _, c := range e.Changes {
		if c.Next == "" || !s.allows(c.Field) {
			continue
		}
		if err := m.Set(c.Field, c.Next); err != nil {
			return Member{}, fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	if m.MemberNumber == "" {
		m.MemberNumber = a.newNumber()
	}
	created, err := a.store.InsertMember(ctx, m)
	if err != nil {
		return Member{}, fmt.Errorf("%w: insert %s: %w", ErrStoreWrite, e.ID, err)
	}
	return created, nil
}

func (a *Applier) update(ctx context.Context, e Entry, s Selection) (int, error) {
	if e.Current == nil || e.Current.ID == 0 {
		return 0, fmt.Errorf("%w: entry %s has no roster member", ErrNotFound, e.ID)
	}
	fields := make(map[string]string)
	for _, c := range e.Changes {
		if strings.TrimSpace(c.Next) == "" || !s.allows(c.Field) {
			continue
		}
		fields[c.Field] = c.Next
	}
	if len(fields) == 0 {
		return 0, nil
	}
	if err := a.store.UpsertRosterFields(ctx, e.Current.ID, fields); err != nil {
		return 0, fmt.Errorf("%w: update %s: %w", ErrStoreWrite, e.ID, err)
	}
	return len(fields), nil
}
