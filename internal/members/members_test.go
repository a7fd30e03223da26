package members

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// memRoster is an in-memory roster with failure injection.
type memRoster struct {
	mu        sync.Mutex
	members   []Member
	next      int64
	insertErr error
	writes    []map[string]string
}

func (r *memRoster) ListRoster(_ context.Context, f Filter) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Member
	for _, m := range r.members {
		if f.Search == "" || strings.Contains(strings.ToLower(m.FullName()+" "+m.Email), strings.ToLower(f.Search)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRoster) InsertMember(_ context.Context, m Member) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return Member{}, r.insertErr
	}
	r.next++
	m.ID = r.next
	r.members = append(r.members, m)
	return m, nil
}

func (r *memRoster) UpsertRosterFields(_ context.Context, id int64, fields map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, fields)
	for i := range r.members {
		if r.members[i].ID == id {
			for f, v := range fields {
				if err := r.members[i].Set(f, v); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (r *memRoster) add(m Member) Member {
	r.next++
	m.ID = r.next
	r.members = append(r.members, m)
	return m
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fptr(v float64) *float64 { return &v }

func sptr(s string) *string { return &s }
