package schedule

import (
	"context"
	"fmt"
	"strings"
)

// SetClubSide puts the club's team on the home side (clubHome) or the away
// side. Home and away teams swap together with their scores; ClubTeam stays
// as it is. Asking for the side the club already plays is a no-op.
func (e *Engine) SetClubSide(ctx context.Context, rec Record, clubHome bool) (Record, error) {
	if strings.TrimSpace(rec.HomeTeam) == "" || strings.TrimSpace(rec.AwayTeam) == "" {
		return Record{}, ErrTeamsUnknown
	}
	if rec.ClubTeam == "" {
		rec.ClubTeam = rec.HomeTeam
	}
	if rec.ClubIsHome() == clubHome {
		return rec, nil
	}
	swapped := rec.swapSides()

	if rec.Origin == OriginAuthoritative {
		p := Patch{
			HomeTeam: strp(swapped.HomeTeam),
			AwayTeam: strp(swapped.AwayTeam),
			ClubTeam: strp(swapped.ClubTeam),
		}
		if rec.HomeScore != nil || rec.AwayScore != nil {
			p.Scores = &ScorePatch{Home: swapped.HomeScore, Away: swapped.AwayScore}
		}
		if err := e.store.UpdateSchedule(ctx, rec.ID, p); err != nil {
			return Record{}, storeErr(err)
		}
		e.metrics.Toggled()
		return swapped, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	eph, err := e.cache.ReadCollection(ctx)
	if err != nil {
		return Record{}, err
	}
	i := locate(eph, rec)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, rec.Identity)
	}
	// only the participants of the cached entry change
	cur := eph[i]
	if cur.ClubTeam == "" {
		cur.ClubTeam = cur.HomeTeam
	}
	if cur.ClubIsHome() == clubHome {
		return cur, nil
	}
	swapped = cur.swapSides()
	eph[i] = swapped
	if err := e.cache.WriteCollection(ctx, eph); err != nil {
		return Record{}, err
	}
	e.metrics.Toggled()
	return swapped, nil
}

// locate finds the cache entry of rec by uid, else by the pre-swap
// (date, home, away) tuple.
func locate(eph []Record, rec Record) int {
	for i, r := range eph {
		if rec.ExternalUID != "" {
			if r.ExternalUID == rec.ExternalUID {
				return i
			}
			continue
		}
		if r.Date == rec.Date && r.HomeTeam == rec.HomeTeam && r.AwayTeam == rec.AwayTeam {
			return i
		}
	}
	return -1
}
