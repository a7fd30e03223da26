package members

import (
	"strings"
)

type Kind string

const (
	KindNew    Kind = "new"
	KindUpdate Kind = "update"
)

// FieldChange is one proposed field write. Previous is nil for new members.
type FieldChange struct {
	Field    string  `json:"field"`
	Previous *string `json:"previous,omitempty"`
	Next     string  `json:"next"`
}

// Entry is the diff of one uploaded row against the roster.
type Entry struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Incoming Member        `json:"incoming"`
	Current  *Member       `json:"current,omitempty"`
	Changes  []FieldChange `json:"changes"`
}

// Report is the outcome of diffing an upload.
type Report struct {
	Entries   []Entry  `json:"entries"`
	Total     int      `json:"total"`
	Skipped   int      `json:"skipped"`
	Unchanged int      `json:"unchanged"`
	Ignored   int      `json:"ignored"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Counts returns the number of new and update entries.
func (r Report) Counts() (created, updated int) {
	for _, e := range r.Entries {
		if e.Kind == KindNew {
			created++
		} else {
			updated++
		}
	}
	return created, updated
}

// Diff compares an upload with the current roster. Empty incoming values
// never produce a change. Rows whose identity was already seen in the same
// upload, or that match a roster member an earlier row already matched,
// are ignored because the target is ambiguous. Matches without changes are
// counted as unchanged and left out.
func Diff(current []Member, up Upload) Report {
	rep := Report{Total: up.Total, Skipped: up.Skipped, Warnings: up.Warnings}
	ix := newIndex(current)
	seen := make(map[string]bool, len(up.Rows))
	claimed := make(map[int]bool)

	for _, in := range up.Rows {
		id := Identity(in)
		if seen[id] {
			rep.Ignored++
			continue
		}
		seen[id] = true

		pos := ix.match(in)
		if pos < 0 {
			rep.Entries = append(rep.Entries, Entry{ID: id, Kind: KindNew, Incoming: in, Changes: newChanges(in)})
			continue
		}
		if claimed[pos] {
			rep.Ignored++
			continue
		}
		claimed[pos] = true

		cur := current[pos]
		changes := updateChanges(cur, in)
		if len(changes) == 0 {
			rep.Unchanged++
			continue
		}
		rep.Entries = append(rep.Entries, Entry{ID: id, Kind: KindUpdate, Incoming: in, Current: &cur, Changes: changes})
	}
	return rep
}

func newChanges(in Member) []FieldChange {
	var out []FieldChange
	for _, f := range Fields {
		if v := in.Get(f); v != "" {
			out = append(out, FieldChange{Field: f, Next: v})
		}
	}
	return out
}

func updateChanges(cur, in Member) []FieldChange {
	var out []FieldChange
	for _, f := range Fields {
		next := in.Get(f)
		if next == "" {
			continue
		}
		prev := cur.Get(f)
		if same(f, prev, next) {
			continue
		}
		p := prev
		out = append(out, FieldChange{Field: f, Previous: &p, Next: next})
	}
	return out
}

func same(field, a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch field {
	case FieldEmail, FieldMemberNumber:
		return strings.EqualFold(a, b)
	}
	return a == b
}
