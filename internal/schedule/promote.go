package schedule

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Promote moves an ephemeral record into the persisted store. edited holds
// the values to persist (often original itself). The store insert happens
// first; only when it succeeds is the cache entry removed, keyed by uid or
// else by the full field tuple of original. A failed cache delete after a
// successful insert leaves a shadowed copy that View hides and Prune
// removes, so it is logged rather than returned.
func (e *Engine) Promote(ctx context.Context, original, edited Record) (Record, error) {
	if original.Origin == OriginAuthoritative {
		return Record{}, ErrAlreadyAuthoritative
	}
	rec := edited
	rec.ID, rec.Identity, rec.ExternalUID = 0, "", ""
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.store.InsertSchedule(ctx, rec)
	if err != nil {
		e.metrics.Promotion("store_error")
		return Record{}, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	rec.ID = id
	rec.Identity = original.Identity
	rec.Origin = OriginAuthoritative
	if original.Identity != "" {
		e.promoted[original.Identity] = id
	}

	log := e.log.WithFields(logrus.Fields{"identity": original.Identity, "id": id})
	if err := e.removeFromCache(ctx, original); err != nil {
		e.metrics.Promotion("cache_error")
		log.WithError(err).Warn("promoted record left in cache")
		return rec, nil
	}
	e.metrics.Promotion("ok")
	log.Info("record promoted")
	return rec, nil
}

// removeFromCache deletes the entry matching original. Callers hold e.mu.
func (e *Engine) removeFromCache(ctx context.Context, original Record) error {
	eph, err := e.cache.ReadCollection(ctx)
	if err != nil {
		return err
	}
	i := findEphemeral(eph, original)
	if i < 0 {
		return nil
	}
	eph = append(eph[:i], eph[i+1:]...)
	return e.cache.WriteCollection(ctx, eph)
}

func findEphemeral(eph []Record, original Record) int {
	for i, r := range eph {
		if original.ExternalUID != "" {
			if r.ExternalUID == original.ExternalUID {
				return i
			}
			continue
		}
		if r.sameFields(original) {
			return i
		}
	}
	return -1
}

// EnterResult records a final score. An ephemeral record is promoted as
// completed; an authoritative one is updated in place.
func (e *Engine) EnterResult(ctx context.Context, rec Record, home, away int) (Record, error) {
	if home < 0 || away < 0 {
		return Record{}, fmt.Errorf("%w: negative score", ErrInvalidRecord)
	}
	edited := rec
	edited.Status = StatusCompleted
	edited.HomeScore, edited.AwayScore = intp(home), intp(away)
	if rec.Origin != OriginAuthoritative {
		return e.Promote(ctx, rec, edited)
	}
	st := StatusCompleted
	p := Patch{Status: &st, Scores: &ScorePatch{Home: edited.HomeScore, Away: edited.AwayScore}}
	if err := e.store.UpdateSchedule(ctx, rec.ID, p); err != nil {
		return Record{}, storeErr(err)
	}
	return edited, nil
}

// Save writes an edit made in the record editor. Saving an ephemeral record
// promotes it.
func (e *Engine) Save(ctx context.Context, original, edited Record) (Record, error) {
	if err := edited.Validate(); err != nil {
		return Record{}, err
	}
	if original.Origin != OriginAuthoritative {
		return e.Promote(ctx, original, edited)
	}
	if err := e.store.UpdateSchedule(ctx, original.ID, patchFrom(edited)); err != nil {
		return Record{}, storeErr(err)
	}
	edited.ID, edited.Origin = original.ID, OriginAuthoritative
	return edited, nil
}
