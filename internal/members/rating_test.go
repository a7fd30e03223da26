package members

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1850", 1850, true},
		{"1850,5", 1850.5, true},
		{"1850.5", 1850.5, true},
		{"1.850", 1850, true},
		{"1,850", 1850, true},
		{"1.234,5", 1234.5, true},
		{"1,234.5", 1234.5, true},
		{"1.234.567", 1234567, true},
		{"0,125", 0.125, true},
		{" 1 850 ", 1850, true},
		{"12,50", 12.5, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseRating(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		require.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestMemberSetGet(t *testing.T) {
	var m Member
	require.NoError(t, m.Set(FieldRating, "1.612,0"))
	require.Equal(t, "1612", m.Get(FieldRating))
	require.NoError(t, m.Set(FieldEmail, "  a@b.de "))
	require.Equal(t, "a@b.de", m.Email)
	require.ErrorIs(t, m.Set("shoeSize", "44"), ErrUnknownField)
	require.Error(t, m.Set(FieldRating, "viel"))
}
