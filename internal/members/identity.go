package members

import (
	"strings"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/textnorm"
)

// Identity is the match key of a member: the member number when present,
// else the normalised email, else the normalised first and last name. An
// empty result means the row cannot be matched at all.
func Identity(m Member) string {
	if k := numberKey(m); k != "" {
		return k
	}
	if k := emailKey(m); k != "" {
		return k
	}
	return nameKey(m)
}

func numberKey(m Member) string {
	n := strings.ToUpper(strings.TrimSpace(m.MemberNumber))
	if n == "" {
		return ""
	}
	return "nr:" + n
}

func emailKey(m Member) string {
	e := textnorm.FoldEmail(m.Email)
	if e == "" {
		return ""
	}
	return "mail:" + e
}

func nameKey(m Member) string {
	f, l := textnorm.FoldKey(m.FirstName), textnorm.FoldKey(m.LastName)
	if f == "" && l == "" {
		return ""
	}
	return "name:" + f + "|" + l
}

// index finds roster members by each key kind.
type index struct {
	byNumber map[string]int
	byEmail  map[string]int
	byName   map[string]int
}

func newIndex(roster []Member) index {
	ix := index{
		byNumber: make(map[string]int),
		byEmail:  make(map[string]int),
		byName:   make(map[string]int),
	}
	add := func(m map[string]int, k string, i int) {
		if k == "" {
			return
		}
		if _, dup := m[k]; !dup {
			m[k] = i
		}
	}
	for i, m := range roster {
		add(ix.byNumber, numberKey(m), i)
		add(ix.byEmail, emailKey(m), i)
		add(ix.byName, nameKey(m), i)
	}
	return ix
}

// match looks the row up by the key kind its Identity uses: a row with a
// member number is matched by number only, one with an email by email only,
// otherwise by name. Returns the roster position, or -1.
func (ix index) match(m Member) int {
	var (
		table map[string]int
		key   string
	)
	switch {
	case numberKey(m) != "":
		table, key = ix.byNumber, numberKey(m)
	case emailKey(m) != "":
		table, key = ix.byEmail, emailKey(m)
	default:
		table, key = ix.byName, nameKey(m)
	}
	if key == "" {
		return -1
	}
	if i, ok := table[key]; ok {
		return i
	}
	return -1
}
