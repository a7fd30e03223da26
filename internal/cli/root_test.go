package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/members"
	"github.com/Melchy1971/tisch-tennis-buddy-52438-sub000/internal/schedule"
)

// workspace writes a config pointing at fresh databases in a temp dir.
func workspace(t *testing.T) (dir, cfg string) {
	t.Helper()
	dir = t.TempDir()
	cfg = filepath.Join(dir, "config.yaml")
	body := "db:\n  path: " + filepath.Join(dir, "club.db") + "\n" +
		"cache:\n  path: " + filepath.Join(dir, "cache.db") + "\n" +
		"club:\n  name: TTC Musterstadt\n  teams: [Herren I]\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o600))
	return dir, cfg
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := run(t, "detect", "x.csv", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.csv")
	require.NoError(t, os.WriteFile(path, []byte("Termin;Heim;Gast;Notiz\n20.09.2025;A;B;x\n"), 0o600))

	out, err := run(t, "detect", path, "--format", "json")
	require.NoError(t, err)
	var d detection
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, "semicolon", d.Delimiter)
	assert.Equal(t, map[string]string{"Termin": "date", "Heim": "homeTeam", "Gast": "awayTeam"}, d.Columns)
	assert.Equal(t, []string{"Notiz"}, d.Unknown)
}

func TestImportListExport(t *testing.T) {
	dir, cfg := workspace(t)
	plan := filepath.Join(dir, "plan.csv")
	require.NoError(t, os.WriteFile(plan, []byte(
		"Termin;Staffel;Heim;Gast\n"+
			"20.09.2025 12:00;Bezirksliga;TTC Gegner;Herren I\n"+
			"21.09.2025 10:00;Bezirksliga;Herren I;SV Nord\n"), 0o600))

	out, err := run(t, "--config", cfg, "import", plan, "--format", "json")
	require.NoError(t, err)
	var rep schedule.ImportReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.Added)

	// a second import of the same file adds nothing
	out, err = run(t, "--config", cfg, "import", plan)
	require.NoError(t, err)
	assert.Contains(t, out, "added 0, duplicates 2")

	out, err = run(t, "--config", cfg, "list", "--from", "2025-09-21")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "SV Nord")

	ics := filepath.Join(dir, "plan.ics")
	_, err = run(t, "--config", cfg, "export", "--as", "ics", "-o", ics)
	require.NoError(t, err)
	blob, err := os.ReadFile(ics)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(blob), "BEGIN:VEVENT"))

	_, err = run(t, "--config", cfg, "export", "--as", "pdf")
	require.Error(t, err)
}

func TestMembersDiffApply(t *testing.T) {
	dir, cfg := workspace(t)
	backup := filepath.Join(dir, "backup.csv")
	require.NoError(t, os.WriteFile(backup, []byte(
		"Mitgliedsnummer;Vorname;Nachname;E-Mail\n"+
			"M1;Anna;Berg;anna@x.de\n"+
			";Ben;Kurz;ben@x.de\n"), 0o600))
	report := filepath.Join(dir, "report.json")

	out, err := run(t, "--config", cfg, "members", "diff", backup, "-o", report)
	require.NoError(t, err)
	assert.Contains(t, out, "new 2, update 0")

	_, err = run(t, "--config", cfg, "members", "apply", report)
	require.Error(t, err)

	out, err = run(t, "--config", cfg, "members", "apply", report, "--all", "--format", "json")
	require.NoError(t, err)
	var res members.ApplyResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Created, 2)
	assert.Equal(t, "M1", res.Created[0].MemberNumber)
	assert.Regexp(t, `^M-[0-9A-F]{8}$`, res.Created[1].MemberNumber)

	// the roster now matches the backup
	out, err = run(t, "--config", cfg, "members", "diff", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "new 0, update 0, unchanged 2")
}

func TestHashToken(t *testing.T) {
	out, err := run(t, "hash-token", "--format", "json")
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Len(t, m["token"], 64)
	assert.True(t, strings.HasPrefix(m["hash"], "$2"))
}
