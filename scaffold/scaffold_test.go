package scaffold

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderContent(t *testing.T) {
	content := []byte("package __package__ // __type__ and __unknown__")

	rendered := RenderContent(content, map[string]string{
		"package": "migrations",
		"type":    "AddUsersTable2023_05_01_101112_123456",
	})

	assert.Equal(t,
		"package migrations // AddUsersTable2023_05_01_101112_123456 and __unknown__",
		string(rendered))
}

func TestRenderContentUnknownPlaceholdersUntouched(t *testing.T) {
	content := []byte("hello __who__")

	rendered := RenderContent(content, map[string]string{"other": "x"})
	assert.Equal(t, "hello __who__", string(rendered))

	rendered = RenderContent(content, nil)
	assert.Equal(t, "hello __who__", string(rendered))
}

func TestRenderDefaultTemplate(t *testing.T) {
	content, err := Render(DefaultTemplate, map[string]string{
		"identifier": "2023_05_01_101112_123456_add_users_table",
		"type":       "AddUsersTable2023_05_01_101112_123456",
		"package":    "migrations",
	})
	require.NoError(t, err)

	s := string(content)
	assert.Contains(t, s, "package migrations")
	assert.Contains(t, s, "type AddUsersTable2023_05_01_101112_123456 struct{}")
	assert.Contains(t, s,
		`migration.Register("2023_05_01_101112_123456_add_users_table"`)
	assert.NotContains(t, s, "__")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("nonexistent", nil)
	assert.Error(t, err)
}

func TestCreateWritesMigrationFile(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2023, 5, 1, 10, 11, 12, 123456000, time.UTC)

	path, err := Create(&CreateParam{
		Name: "add_users_table",
		Dir:  dir,
		Time: created,
	})
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(dir, "2023_05_01_101112_123456_add_users_table.go"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(content)
	assert.Contains(t, s, "package migrations")
	assert.Contains(t, s, "AddUsersTable2023_05_01_101112_123456")
}

func TestCreateRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2023, 5, 1, 10, 11, 12, 123456000, time.UTC)

	p := &CreateParam{
		Name: "add_users_table",
		Dir:  dir,
		Time: created,
	}

	_, err := Create(p)
	require.NoError(t, err)

	_, err = Create(p)
	assert.Error(t, err)
}

func TestCreateCallerSubstitutions(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2023, 5, 1, 10, 11, 12, 0, time.UTC)

	path, err := Create(&CreateParam{
		Name:    "seed",
		Dir:     dir,
		Package: "seeds",
		Time:    created,
		Substitutions: map[string]string{
			// Reserved tokens cannot be overridden
			"package": "hijacked",
		},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package seeds")
}

func TestCreateRequiresName(t *testing.T) {
	_, err := Create(nil)
	assert.Error(t, err)

	_, err = Create(&CreateParam{Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = Create(&CreateParam{Name: "Not_Snake", Dir: t.TempDir()})
	assert.Error(t, err)
}
