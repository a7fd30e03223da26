package schedule

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/cache"
)

// memStore is an in-memory persisted store with failure injection.
type memStore struct {
	mu        sync.Mutex
	rows      []Record
	next      int64
	teams     []Team
	halls     []Hall
	insertErr error
	updateErr error
}

func (s *memStore) ListSchedule(_ context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.rows {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) InsertSchedule(_ context.Context, r Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.next++
	r.ID, r.Identity, r.ExternalUID, r.Origin = s.next, "", "", OriginAuthoritative
	s.rows = append(s.rows, r)
	return r.ID, nil
}

func (s *memStore) UpdateSchedule(_ context.Context, id int64, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i, r := range s.rows {
		if r.ID == id {
			s.rows[i] = p.apply(r)
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (s *memStore) DeleteSchedule(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (s *memStore) ListTeams(context.Context) ([]Team, error) { return s.teams, nil }
func (s *memStore) ListHalls(context.Context) ([]Hall, error) { return s.halls, nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEngine(t *testing.T, clubNames ...string) (*Engine, *memStore, *cache.Memory) {
	t.Helper()
	st := &memStore{}
	c := cache.NewMemory(nil)
	e := NewEngine(st, c, Config{ClubNames: clubNames, Location: time.UTC}, quietLogger(), nil)
	return e, st, c
}

func cachedRecords(t *testing.T, c cache.Store) []Record {
	t.Helper()
	recs, err := NewCache(c).ReadCollection(context.Background())
	if err != nil {
		t.Fatalf("read cache: %v", err)
	}
	return recs
}

const dedupICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:abc123
DTSTAMP:20250901T120000Z
DTSTART:20251020T193000
SUMMARY:Herren I - TTC Gegner
LOCATION:Sporthalle Nord
END:VEVENT
END:VCALENDAR
`

func crlf(s string) string {
	out := make([]byte, 0, len(s)+32)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' && (i == 0 || s[i-1] != '\r') {
			out = append(out, '\r')
		}
		out = append(out, s[i])
	}
	return string(out)
}
