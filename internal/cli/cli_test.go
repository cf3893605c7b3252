package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divine-deck/internal/db"
	"divine-deck/internal/models"
	"divine-deck/internal/services"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		configFile = ""
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := runRoot(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "divinedeck version test-version-1.0.0")
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "display", "setups", "version"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, displayCmd.Flags().Lookup("url"))
}

func TestSetupsListCmd(t *testing.T) {
	chdir(t, t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "setups.db")
	t.Setenv("DIVINEDECK_STORAGE_DB_PATH", dbPath)

	out, err := runRoot(t, "setups", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved setups")

	database, err := db.Open(dbPath)
	require.NoError(t, err)
	_, err = services.NewSetupStore(database).Save(models.MassSetup{
		ID:    "setup-1",
		Name:  "Easter Vigil",
		Queue: []models.QueueEntry{{Slide: models.Slide{ID: "a"}, QueueID: "q1"}},
	})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	out, err = runRoot(t, "setups", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Easter Vigil")
	assert.Contains(t, out, "setup-1")

	out, err = runRoot(t, "setups", "delete", "setup-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted setup-1")

	_, err = runRoot(t, "setups", "delete", "setup-1")
	assert.ErrorIs(t, err, services.ErrSetupNotFound)
}

func TestRenderEntry(t *testing.T) {
	assert.Equal(t, "(blank)", renderEntry(nil))

	out := renderEntry(&models.QueueEntry{Slide: models.Slide{
		Title:      "Gospel Acclamation",
		LayoutType: models.LayoutTwoCol,
		Contents:   []string{"Alleluia", "Alleluia"},
	}})
	assert.Equal(t, "== Gospel Acclamation [2-col]\n  1| Alleluia\n  2| Alleluia", out)
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
