package schedule

import (
	"strings"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

// ClubResolver decides which participant of a fixture is the club's team.
//
// Names are grouped in tiers that are consulted in order; the first tier in
// which either side matches decides. Within a tier each side is scored
// against every name: exact folded match 3, side contains the name 2, name
// contains the side 1. The higher score wins and ties go to the home side.
// When nothing matches the home side is taken.
type ClubResolver struct {
	tiers [][]string
}

// NewClubResolver builds a resolver with one tier per argument list.
func NewClubResolver(tiers ...[]string) ClubResolver {
	var c ClubResolver
	for _, names := range tiers {
		c = c.With(names...)
	}
	return c
}

// With appends a tier of lower precedence.
func (c ClubResolver) With(names ...string) ClubResolver {
	var tier []string
	seen := make(map[string]bool)
	for _, n := range names {
		f := textnorm.FoldTeam(n)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		tier = append(tier, f)
	}
	if len(tier) == 0 {
		return c
	}
	tiers := append(append([][]string(nil), c.tiers...), tier)
	return ClubResolver{tiers: tiers}
}

func (c ClubResolver) Resolve(home, away string) string {
	home, away = strings.TrimSpace(home), strings.TrimSpace(away)
	if home == "" {
		return away
	}
	if away == "" {
		return home
	}
	for _, tier := range c.tiers {
		hs, as := score(tier, home), score(tier, away)
		if hs == 0 && as == 0 {
			continue
		}
		if as > hs {
			return away
		}
		return home
	}
	return home
}

func score(names []string, side string) int {
	f := textnorm.FoldTeam(side)
	if f == "" {
		return 0
	}
	best := 0
	for _, n := range names {
		s := 0
		switch {
		case f == n:
			s = 3
		case strings.Contains(f, n):
			s = 2
		case strings.Contains(n, f):
			s = 1
		}
		if s > best {
			best = s
		}
	}
	return best
}
