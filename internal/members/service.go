package members

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/metrics"
)

// Service ties backup parsing, diffing and applying to one roster.
type Service struct {
	store   RosterStore
	applier *Applier
	log     *logrus.Logger
	metrics *metrics.Metrics
}

func NewService(store RosterStore, log *logrus.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, applier: NewApplier(store, log, m), log: log, metrics: m}
}

// DiffFile parses a backup and diffs it against the current roster.
func (s *Service) DiffFile(ctx context.Context, name string, data []byte) (Report, error) {
	up, err := ParseBackup(name, data)
	if err != nil {
		return Report{}, err
	}
	current, err := s.store.ListRoster(ctx, Filter{})
	if err != nil {
		return Report{}, fmt.Errorf("list roster: %w", err)
	}
	rep := Diff(current, up)

	created, updated := rep.Counts()
	s.metrics.DiffEntries(string(KindNew), created)
	s.metrics.DiffEntries(string(KindUpdate), updated)
	entry := s.log.WithFields(logrus.Fields{
		"file":      name,
		"new":       created,
		"update":    updated,
		"unchanged": rep.Unchanged,
		"ignored":   rep.Ignored,
		"skipped":   rep.Skipped,
	})
	for _, w := range rep.Warnings {
		entry.Warn(w)
	}
	entry.Info("member diff")
	return rep, nil
}

func (s *Service) Apply(ctx context.Context, entries []Entry, selections []Selection) (ApplyResult, error) {
	return s.applier.Apply(ctx, entries, selections)
}

func (s *Service) Roster(ctx context.Context, f Filter) ([]Member, error) {
	return s.store.ListRoster(ctx, f)
}
