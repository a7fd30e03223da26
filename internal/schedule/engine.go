package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/cache"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/metrics"
)

// Config carries the club-specific settings of the engine.
type Config struct {
	ClubNames []string
	Location  *time.Location
	Extractor TeamExtractor
}

// Engine reconciles the persisted store with the ephemeral cache. All
// cache read-modify-write cycles of one process go through mu; other
// processes writing the same cache win or lose by last write.
type Engine struct {
	store   Store
	cache   *Cache
	cfg     Config
	log     *logrus.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	promoted map[string]int64 // identity -> store row id, this session only
}

func NewEngine(store Store, c cache.Store, cfg Config, log *logrus.Logger, m *metrics.Metrics) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Engine{
		store:    store,
		cache:    NewCache(c),
		cfg:      cfg,
		log:      log,
		metrics:  m,
		promoted: make(map[string]int64),
	}
}

// Location is the club time zone used for calendar times.
func (e *Engine) Location() *time.Location { return e.cfg.Location }

// ImportReport summarises one import.
type ImportReport struct {
	BatchID    string   `json:"batch_id"`
	Source     string   `json:"source"`
	Total      int      `json:"total"`
	Skipped    int      `json:"skipped"`
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Warnings   []string `json:"warnings,omitempty"`
	Summary    string   `json:"summary"`
	Records    []Record `json:"records"`
}

// Options builds the parse options for an import. selectedTeam, when set,
// takes precedence over the configured club names and the stored teams.
func (e *Engine) Options(ctx context.Context, selectedTeam string) (ParseOptions, error) {
	teams, err := e.store.ListTeams(ctx)
	if err != nil {
		return ParseOptions{}, fmt.Errorf("list teams: %w", err)
	}
	halls, err := e.store.ListHalls(ctx)
	if err != nil {
		return ParseOptions{}, fmt.Errorf("list halls: %w", err)
	}
	names := make([]string, 0, len(teams))
	for _, t := range teams {
		names = append(names, t.Name)
	}
	return ParseOptions{
		Club:      NewClubResolver([]string{selectedTeam}, e.cfg.ClubNames, names),
		Extractor: e.cfg.Extractor,
		Location:  e.cfg.Location,
		Halls:     halls,
	}, nil
}

// ImportFile parses an uploaded file and merges it into the cache.
func (e *Engine) ImportFile(ctx context.Context, name string, data []byte, selectedTeam string) (ImportReport, error) {
	opts, err := e.Options(ctx, selectedTeam)
	if err != nil {
		return ImportReport{}, err
	}
	b, err := ParseFile(name, data, opts)
	if err != nil {
		return ImportReport{}, err
	}
	return e.Import(ctx, b)
}

// Import merges a parsed batch into the cache. Either the whole new
// collection is written or nothing changes.
func (e *Engine) Import(ctx context.Context, b Batch) (ImportReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rep := ImportReport{
		BatchID:  uuid.NewString(),
		Source:   b.Source,
		Total:    b.Total,
		Skipped:  b.Skipped,
		Warnings: b.Warnings,
		Summary:  b.Summary(),
	}
	cached, err := e.cache.ReadCollection(ctx)
	if err != nil {
		return rep, err
	}
	auth, err := e.store.ListSchedule(ctx, Filter{})
	if err != nil {
		return rep, fmt.Errorf("list schedule: %w", err)
	}
	res := Merge(cached, auth, b.Records)
	if len(res.Added) > 0 {
		if err := e.cache.WriteCollection(ctx, res.Cache); err != nil {
			return rep, err
		}
	}
	rep.Added, rep.Duplicates, rep.Records = len(res.Added), len(res.Duplicates), res.Added

	e.metrics.Imported(b.Source, rep.Added, rep.Skipped, rep.Duplicates)
	entry := e.log.WithFields(logrus.Fields{
		"batch":      rep.BatchID,
		"source":     rep.Source,
		"total":      rep.Total,
		"added":      rep.Added,
		"skipped":    rep.Skipped,
		"duplicates": rep.Duplicates,
	})
	for _, w := range rep.Warnings {
		entry.Warn(w)
	}
	entry.Info("schedule import")
	return rep, nil
}

// View returns the unified view. The persisted store is read on every call.
func (e *Engine) View(ctx context.Context, f Filter) ([]Record, error) {
	auth, err := e.store.ListSchedule(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	eph, err := e.cache.ReadCollection(ctx)
	if err != nil {
		return nil, err
	}
	return Unify(auth, f.apply(eph)), nil
}

// Prune removes ephemeral records that already have an authoritative copy,
// e.g. after a promotion whose cache delete failed. It returns the number
// of records removed.
func (e *Engine) Prune(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	auth, err := e.store.ListSchedule(ctx, Filter{})
	if err != nil {
		return 0, fmt.Errorf("list schedule: %w", err)
	}
	eph, err := e.cache.ReadCollection(ctx)
	if err != nil {
		return 0, err
	}
	keep, drop := shadowed(auth, eph)
	if len(drop) == 0 {
		return 0, nil
	}
	if err := e.cache.WriteCollection(ctx, keep); err != nil {
		return 0, err
	}
	e.log.WithField("removed", len(drop)).Info("pruned shadowed cache entries")
	return len(drop), nil
}

// DeleteEphemeral removes one record from the cache by identity.
func (e *Engine) DeleteEphemeral(ctx context.Context, identity string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	eph, err := e.cache.ReadCollection(ctx)
	if err != nil {
		return err
	}
	out := eph[:0]
	for _, r := range eph {
		if r.Identity != identity {
			out = append(out, r)
		}
	}
	if len(out) == len(eph) {
		return fmt.Errorf("%w: %s", ErrNotFound, identity)
	}
	return e.cache.WriteCollection(ctx, out)
}

// DeleteAuthoritative removes a persisted record.
func (e *Engine) DeleteAuthoritative(ctx context.Context, id int64) error {
	if err := e.store.DeleteSchedule(ctx, id); err != nil {
		return storeErr(err)
	}
	e.mu.Lock()
	for k, v := range e.promoted {
		if v == id {
			delete(e.promoted, k)
		}
	}
	e.mu.Unlock()
	return nil
}

// Lookup finds a record by the identity it had when it was imported, even
// after it was promoted during this session.
func (e *Engine) Lookup(ctx context.Context, identity string) (Record, error) {
	e.mu.Lock()
	id, promoted := e.promoted[identity]
	e.mu.Unlock()

	if promoted {
		auth, err := e.store.ListSchedule(ctx, Filter{})
		if err != nil {
			return Record{}, fmt.Errorf("list schedule: %w", err)
		}
		for _, r := range auth {
			if r.ID == id {
				r.Identity, r.Origin = identity, OriginAuthoritative
				return r, nil
			}
		}
		return Record{}, fmt.Errorf("%w: %s (row %d)", ErrNotFound, identity, id)
	}

	eph, err := e.cache.ReadCollection(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range eph {
		if r.Identity == identity {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, identity)
}

// storeErr keeps ErrNotFound visible and marks everything else as a store
// write failure.
func storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreWrite, err)
}

// apply filters ephemeral records the way the store filters its rows.
func (f Filter) apply(recs []Record) []Record {
	if f == (Filter{}) {
		return recs
	}
	var out []Record
	for _, r := range recs {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) match(r Record) bool {
	if f.From != "" && (!r.HasDate() || r.Date < f.From) {
		return false
	}
	if f.To != "" && (!r.HasDate() || r.Date > f.To) {
		return false
	}
	if f.ClubTeam != "" && r.ClubTeam != f.ClubTeam {
		return false
	}
	return true
}
