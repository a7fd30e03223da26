package schedule

import (
	"sort"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

// MergeResult is the outcome of merging one batch into the cache.
type MergeResult struct {
	Cache      []Record // full new cache collection
	Added      []Record
	Duplicates []Record
}

// fixtureKeys indexes authoritative records by composite key in both
// orientations, so a fixture whose sides were toggled after promotion is
// still recognised.
type fixtureKeys map[string]bool

func newFixtureKeys(recs []Record) fixtureKeys {
	k := make(fixtureKeys, 2*len(recs))
	for _, r := range recs {
		k[r.Composite()] = true
		k[CompositeKey(r.Date, r.AwayTeam, r.HomeTeam)] = true
	}
	return k
}

func (k fixtureKeys) has(r Record) bool {
	return k[r.Composite()]
}

// Merge appends the non-duplicate candidates of batch to cached. A candidate
// is a duplicate when its identity or uid is already known (from the cache
// or an earlier candidate of the same batch) or when the fixture is already
// authoritative. Duplicates are dropped as they are; existing entries are
// never updated by an import.
func Merge(cached, authoritative, batch []Record) MergeResult {
	ids := make(map[string]bool, len(cached)+len(batch))
	uids := make(map[string]bool)
	for _, r := range cached {
		ids[r.Identity] = true
		if r.ExternalUID != "" {
			uids[r.ExternalUID] = true
		}
	}
	auth := newFixtureKeys(authoritative)

	res := MergeResult{Cache: append([]Record(nil), cached...)}
	for _, r := range batch {
		dup := ids[r.Identity] ||
			(r.ExternalUID != "" && uids[r.ExternalUID]) ||
			auth.has(r)
		if dup {
			res.Duplicates = append(res.Duplicates, r)
			continue
		}
		r.Origin = OriginEphemeral
		r.ID = 0
		ids[r.Identity] = true
		if r.ExternalUID != "" {
			uids[r.ExternalUID] = true
		}
		res.Added = append(res.Added, r)
		res.Cache = append(res.Cache, r)
	}
	return res
}

// Unify is the read view over both stores: authoritative records plus the
// ephemeral ones not shadowed by an authoritative copy, ordered by date and
// time with undated records last.
func Unify(authoritative, ephemeral []Record) []Record {
	out := make([]Record, 0, len(authoritative)+len(ephemeral))
	for _, r := range authoritative {
		r.Origin = OriginAuthoritative
		out = append(out, r)
	}
	auth := newFixtureKeys(authoritative)
	for _, r := range ephemeral {
		if auth.has(r) {
			continue
		}
		r.Origin = OriginEphemeral
		out = append(out, r)
	}
	SortView(out)
	return out
}

// shadowed returns the ephemeral records that have an authoritative copy.
func shadowed(authoritative, ephemeral []Record) (keep, drop []Record) {
	auth := newFixtureKeys(authoritative)
	for _, r := range ephemeral {
		if auth.has(r) {
			drop = append(drop, r)
		} else {
			keep = append(keep, r)
		}
	}
	return keep, drop
}

// SortView orders records by (date, time); records without a parseable date
// go last. The sort is stable.
func SortView(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		ad, bd := a.HasDate(), b.HasDate()
		if ad != bd {
			return ad
		}
		if !ad {
			return false
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
}

// Group is the view projected onto one of the club's teams.
type Group struct {
	ClubTeam string   `json:"club_team"`
	Records  []Record `json:"records"`
}

// GroupByClubTeam groups a view by club team, keeping the view's order
// inside each group. Groups are sorted by team name.
func GroupByClubTeam(view []Record) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, r := range view {
		k := textnorm.FoldTeam(r.ClubTeam)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{ClubTeam: r.ClubTeam})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return textnorm.FoldTeam(groups[i].ClubTeam) < textnorm.FoldTeam(groups[j].ClubTeam)
	})
	return groups
}
