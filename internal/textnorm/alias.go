package textnorm

import "strings"

// AliasTable maps folded header keys (see FoldKey) to canonical field names.
type AliasTable map[string]string

// NewAliasTable builds a table from canonical -> aliases. Aliases are folded
// on the way in so callers can write them the way they appear in files.
func NewAliasTable(aliases map[string][]string) AliasTable {
	t := make(AliasTable)
	for canonical, list := range aliases {
		t[FoldKey(canonical)] = canonical
		for _, a := range list {
			t[FoldKey(a)] = canonical
		}
	}
	return t
}

// Lookup returns the canonical field for a raw header, or ok=false when the
// header is unknown.
func (t AliasTable) Lookup(header string) (string, bool) {
	k := FoldKey(header)
	if k == "" {
		return "", false
	}
	c, ok := t[k]
	return c, ok
}

// MapHeaders maps column index -> canonical field. Unknown headers are left
// out; when two columns map to the same field the first one wins.
func (t AliasTable) MapHeaders(headers []string) map[int]string {
	out := make(map[int]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		c, ok := t.Lookup(h)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out[i] = c
	}
	return out
}

// Row reads canonical fields out of a data row using a header mapping.
type Row struct {
	headers map[int]string
	cells   []string
}

// NewRow pairs a header mapping with one data row.
func NewRow(headers map[int]string, cells []string) Row {
	return Row{headers: headers, cells: cells}
}

// Get returns the trimmed value of a canonical field, or "".
func (r Row) Get(field string) string {
	for i, k := range r.headers {
		if k == field && i < len(r.cells) {
			return trim(r.cells[i])
		}
	}
	return ""
}

// Blank reports whether every cell of the row is empty.
func (r Row) Blank() bool {
	for _, c := range r.cells {
		if trim(c) != "" {
			return false
		}
	}
	return true
}

func trim(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
