package config

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DIVINEDECK_CONFIG", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.False(t, cfg.TLS.Enabled)
	assert.Equal(t, "divine-deck", cfg.Channel.Name)
	assert.Equal(t, 64, cfg.Channel.InboxSize)
	assert.Equal(t, time.Second, cfg.Timer.Interval)
	assert.Equal(t, 60*time.Second, cfg.Display.PongWait)
	assert.Equal(t, 5.0, cfg.Display.RequestRate)
	assert.True(t, cfg.Library.Watch)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "9090"

[storage]
data_dir = "/srv/deck"

[timer]
interval = "250ms"

[tls]
enabled = true
min_version = "1.3"
`), 0644))
	t.Setenv("DIVINEDECK_SERVER_HOST", "127.0.0.1")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "/srv/deck", cfg.Storage.DataDir)
	assert.Equal(t, 250*time.Millisecond, cfg.Timer.Interval)
	assert.True(t, cfg.TLS.Enabled)
	assert.Equal(t, uint16(tls.VersionTLS13), TLSVersion(cfg.TLS.MinVersion))
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestTLSVersion(t *testing.T) {
	assert.Equal(t, uint16(tls.VersionTLS10), TLSVersion("1.0"))
	assert.Equal(t, uint16(tls.VersionTLS12), TLSVersion("1.2"))
	assert.Equal(t, uint16(tls.VersionTLS12), TLSVersion("bogus"))
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
