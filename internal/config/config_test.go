package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
db:
  path: /data/club.db
club:
  name: TTC Musterstadt
  teams: [Herren I, Damen]
log:
  format: json
`), 0o600))

	t.Setenv("DB_PATH", "/tmp/override.db")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, "/tmp/override.db", cfg.DB.Path)
	require.Equal(t, "clubsched-cache.db", cfg.Cache.Path)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
	require.Equal(t, []string{"TTC Musterstadt", "Herren I", "Damen"}, cfg.ClubNames())
	require.Equal(t, "json", cfg.Log.Format)
	require.False(t, cfg.Pprof)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CLUB_TEAMS", "Herren I,Herren II")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, []string{"127.0.0.1", "::1"}, cfg.TrustedProxies)
	require.Equal(t, []string{"Herren I", "Herren II"}, cfg.Club.Teams)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Europe/Berlin", loc.String())
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, l.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	_, err = NewLogger(LogConfig{Level: "loud"})
	require.Error(t, err)
	_, err = NewLogger(LogConfig{Format: "xml"})
	require.Error(t, err)
}
