package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const planCSV = "Termin;Staffel;Heim;Gast\n" +
	"Sa. 20.09.2025 12:00 (2);Bezirksliga;TTC Gegner;Herren I\n" +
	"So. 21.09.2025 10:00;Kreisliga;Herren II;SV Nord\n" +
	";Kreisliga;Herren II;SV Süd\n"

func importCSV(t *testing.T, e *Engine) ImportReport {
	t.Helper()
	rep, err := e.ImportFile(context.Background(), "plan.csv", []byte(planCSV), "")
	require.NoError(t, err)
	return rep
}

func TestImport_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, "Herren I", "Herren II")

	first := importCSV(t, e)
	require.Equal(t, 2, first.Added)
	require.Equal(t, 1, first.Skipped)
	require.Equal(t, "1 of 3 rows skipped", first.Summary)
	require.NotEmpty(t, first.BatchID)
	view1, err := e.View(ctx, Filter{})
	require.NoError(t, err)

	second := importCSV(t, e)
	require.Equal(t, 0, second.Added)
	require.Equal(t, 2, second.Duplicates)
	view2, err := e.View(ctx, Filter{})
	require.NoError(t, err)

	if diff := cmp.Diff(view1, view2); diff != "" {
		t.Fatalf("view changed on re-import (-first +second):\n%s", diff)
	}
}

func TestImport_ICSDedupScenario(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, "Herren I")

	for i := 0; i < 2; i++ {
		_, err := e.ImportFile(ctx, "plan.ics", []byte(crlf(dedupICS)), "")
		require.NoError(t, err)
	}
	view, err := e.View(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, view, 1)
	require.Equal(t, "uid:abc123", view[0].Identity)
	require.Equal(t, "2025-10-20", view[0].Date)
	require.Equal(t, "Herren I", view[0].HomeTeam)
	require.Equal(t, "TTC Gegner", view[0].AwayTeam)
}

func TestImport_SelectedTeamWins(t *testing.T) {
	e, _, _ := newTestEngine(t, "Herren")
	in := "Termin;Heim;Gast\n20.09.2025;Herren I;Herren II\n"
	rep, err := e.ImportFile(context.Background(), "plan.csv", []byte(in), "Herren II")
	require.NoError(t, err)
	require.Equal(t, "Herren II", rep.Records[0].ClubTeam)
}

func TestImport_CacheFailureRejectsWholeImport(t *testing.T) {
	e, _, c := newTestEngine(t)
	c.FailWrites(errors.New("quota exceeded"))

	_, err := e.ImportFile(context.Background(), "plan.csv", []byte(planCSV), "")
	require.ErrorIs(t, err, ErrCacheWrite)

	c.FailWrites(nil)
	require.Empty(t, cachedRecords(t, c))
}

func TestView_FilterAppliesToBothStores(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, "Herren I", "Herren II")
	importCSV(t, e)

	view, err := e.View(ctx, Filter{ClubTeam: "Herren II"})
	require.NoError(t, err)
	require.Len(t, view, 1)
	require.Equal(t, "SV Nord", view[0].AwayTeam)

	view, err = e.View(ctx, Filter{To: "2025-09-20"})
	require.NoError(t, err)
	require.Len(t, view, 1)
	require.Equal(t, "TTC Gegner", view[0].HomeTeam)
}

func TestPromote_StoreFailureKeepsEphemeralRecord(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	before := cachedRecords(t, c)

	st.insertErr = errors.New("connection reset")
	_, err := e.Promote(ctx, before[0], before[0])
	require.ErrorIs(t, err, ErrStoreWrite)

	require.Equal(t, before, cachedRecords(t, c))
	require.Empty(t, st.rows)
}

func TestPromote_MovesRecordAndKeepsIdentityLookup(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I", "Herren II")
	importCSV(t, e)
	eph := cachedRecords(t, c)
	orig := eph[0]

	edited := orig
	edited.Location = "Sporthalle Nord"
	rec, err := e.Promote(ctx, orig, edited)
	require.NoError(t, err)
	require.Equal(t, OriginAuthoritative, rec.Origin)
	require.NotZero(t, rec.ID)
	require.Equal(t, orig.Identity, rec.Identity)

	require.Len(t, st.rows, 1)
	require.Empty(t, st.rows[0].Identity)
	require.Equal(t, "Sporthalle Nord", st.rows[0].Location)
	require.Len(t, cachedRecords(t, c), 1)

	found, err := e.Lookup(ctx, orig.Identity)
	require.NoError(t, err)
	require.Equal(t, rec.ID, found.ID)
	require.Equal(t, OriginAuthoritative, found.Origin)

	view, err := e.View(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, view, 2)

	_, err = e.Promote(ctx, rec, rec)
	require.ErrorIs(t, err, ErrAlreadyAuthoritative)
}

func TestPromote_MatchesByFieldTupleWithoutUID(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t)
	in := "Termin;Heim;Gast\n20.09.2025;A;B\n20.09.2025;A;B\n"
	_, err := e.ImportFile(ctx, "plan.csv", []byte(in), "")
	require.NoError(t, err)

	eph := cachedRecords(t, c)
	require.Len(t, eph, 2)
	_, err = e.Promote(ctx, eph[0], eph[0])
	require.NoError(t, err)
	require.Len(t, cachedRecords(t, c), 1)
}

func TestPromote_CacheDeleteFailureIsRecoverable(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I")
	_, err := e.ImportFile(ctx, "plan.ics", []byte(crlf(dedupICS)), "")
	require.NoError(t, err)
	orig := cachedRecords(t, c)[0]

	c.FailWrites(errors.New("locked"))
	rec, err := e.Promote(ctx, orig, orig)
	require.NoError(t, err)
	require.Len(t, st.rows, 1)
	c.FailWrites(nil)

	require.Len(t, cachedRecords(t, c), 1)
	view, err := e.View(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, view, 1)
	require.Equal(t, rec.ID, view[0].ID)

	n, err := e.Prune(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Empty(t, cachedRecords(t, c))
}

func TestEnterResult(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	orig := cachedRecords(t, c)[0]

	rec, err := e.EnterResult(ctx, orig, 6, 9)
	require.NoError(t, err)
	require.Equal(t, OriginAuthoritative, rec.Origin)
	require.Equal(t, StatusCompleted, st.rows[0].Status)

	rec, err = e.EnterResult(ctx, rec, 9, 6)
	require.NoError(t, err)
	require.Equal(t, 9, *st.rows[0].HomeScore)
	require.Equal(t, 6, *st.rows[0].AwayScore)
	require.Equal(t, 9, *rec.HomeScore)

	_, err = e.EnterResult(ctx, rec, -1, 0)
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestSave_AuthoritativeUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	rec, err := e.Save(ctx, cachedRecords(t, c)[0], cachedRecords(t, c)[0])
	require.NoError(t, err)

	edited := rec
	edited.Time = "13:00"
	saved, err := e.Save(ctx, rec, edited)
	require.NoError(t, err)
	require.Equal(t, "13:00", saved.Time)
	require.Equal(t, "13:00", st.rows[0].Time)
	require.Len(t, st.rows, 1)

	bad := edited
	bad.Status = StatusCompleted
	_, err = e.Save(ctx, rec, bad)
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestSetClubSide_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t, "Herren I")
	_, err := e.ImportFile(ctx, "plan.ics", []byte(crlf(dedupICS)), "")
	require.NoError(t, err)
	orig := cachedRecords(t, c)[0]
	require.True(t, orig.ClubIsHome())

	away, err := e.SetClubSide(ctx, orig, false)
	require.NoError(t, err)
	require.Equal(t, "TTC Gegner", away.HomeTeam)
	require.Equal(t, "Herren I", away.AwayTeam)
	require.Equal(t, "Herren I", away.ClubTeam)
	require.Equal(t, orig.Identity, away.Identity)

	again, err := e.SetClubSide(ctx, away, false)
	require.NoError(t, err)
	require.Equal(t, away, again)
	require.Equal(t, []Record{away}, cachedRecords(t, c))

	back, err := e.SetClubSide(ctx, again, true)
	require.NoError(t, err)
	if diff := cmp.Diff(orig, back); diff != "" {
		t.Fatalf("round trip changed the record (-want +got):\n%s", diff)
	}
	require.Equal(t, []Record{orig}, cachedRecords(t, c))
}

func TestSetClubSide_LocatesByPreSwapTuple(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	orig := cachedRecords(t, c)[0]
	require.False(t, orig.ClubIsHome())

	home, err := e.SetClubSide(ctx, orig, true)
	require.NoError(t, err)
	require.Equal(t, "Herren I", home.HomeTeam)

	eph := cachedRecords(t, c)
	require.Len(t, eph, 2)
	require.Equal(t, "Herren I", eph[0].HomeTeam)
	require.Equal(t, orig.Identity, eph[0].Identity)
}

func TestSetClubSide_RewritesOnlyTheCachedParticipants(t *testing.T) {
	ctx := context.Background()
	e, _, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	orig := cachedRecords(t, c)[0]

	stale := orig
	stale.Location = "Turnhalle Nord"
	stale.Time = "08:00"
	stale.Category = "Pokal"
	home, err := e.SetClubSide(ctx, stale, true)
	require.NoError(t, err)

	want := orig
	want.HomeTeam, want.AwayTeam = orig.AwayTeam, orig.HomeTeam
	require.Equal(t, want, home)
	require.Equal(t, want, cachedRecords(t, c)[0])
}

func TestSetClubSide_AuthoritativeSwapsScores(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	rec, err := e.EnterResult(ctx, cachedRecords(t, c)[0], 3, 9)
	require.NoError(t, err)

	home, err := e.SetClubSide(ctx, rec, true)
	require.NoError(t, err)
	require.Equal(t, "Herren I", st.rows[0].HomeTeam)
	require.Equal(t, 9, *st.rows[0].HomeScore)
	require.Equal(t, 3, *st.rows[0].AwayScore)
	require.Equal(t, home.HomeTeam, st.rows[0].HomeTeam)
}

func TestSetClubSide_NeedsBothTeams(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.SetClubSide(context.Background(), Record{HomeTeam: "Vereinsfeier"}, false)
	require.ErrorIs(t, err, ErrTeamsUnknown)
}

func TestSetClubSide_StoreFailure(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	rec, err := e.Save(ctx, cachedRecords(t, c)[0], cachedRecords(t, c)[0])
	require.NoError(t, err)

	st.updateErr = errors.New("timeout")
	_, err = e.SetClubSide(ctx, rec, true)
	require.ErrorIs(t, err, ErrStoreWrite)
	require.Equal(t, "TTC Gegner", st.rows[0].HomeTeam)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	e, st, c := newTestEngine(t, "Herren I")
	importCSV(t, e)
	eph := cachedRecords(t, c)

	require.NoError(t, e.DeleteEphemeral(ctx, eph[1].Identity))
	require.ErrorIs(t, e.DeleteEphemeral(ctx, eph[1].Identity), ErrNotFound)

	rec, err := e.Promote(ctx, eph[0], eph[0])
	require.NoError(t, err)
	require.NoError(t, e.DeleteAuthoritative(ctx, rec.ID))
	require.Empty(t, st.rows)
	require.ErrorIs(t, e.DeleteAuthoritative(ctx, rec.ID), ErrNotFound)

	_, err = e.Lookup(ctx, eph[0].Identity)
	require.ErrorIs(t, err, ErrNotFound)
	require.True(t, strings.HasPrefix(eph[0].Identity, "cmp:"))
}
