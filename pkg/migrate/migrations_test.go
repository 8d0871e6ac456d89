package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pawfinderz-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no %s migration found", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, migrate.ValidateEmbedded())
	require.NoError(t, migrate.ValidateDir("migrations"))

	names, err := fs.Glob(migrate.Embedded(), "migrations/*.sql")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(names), 4)
}

func TestGroupMigrationKeepsRosterAuthoritative(t *testing.T) {
	content := readMigration(t, "create_groups")
	for _, check := range []string{
		"CREATE TABLE IF NOT EXISTS group_members",
		"PRIMARY KEY (group_id, user_id)",
		"CHECK (status IN ('active', 'pending', 'banned'))",
		"CHECK (role IN ('member', 'moderator', 'admin'))",
		"ux_groups_active_name",
		"idx_group_members_user",
	} {
		assert.Contains(t, content, check)
	}
}

func TestPetMigrationEnforcesAdoptionInvariant(t *testing.T) {
	content := readMigration(t, "create_pets")
	for _, check := range []string{
		"pets_stray_fee_check",
		"pets_adoption_check",
		"PRIMARY KEY (pet_id, user_id)",
		"adoption_fee numeric(10,2)",
	} {
		assert.Contains(t, content, check)
	}
}

func TestPostMigrationHasChildSets(t *testing.T) {
	content := readMigration(t, "create_group_posts")
	for _, table := range []string{"post_likes", "post_shares", "post_comments", "comment_replies"} {
		assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS "+table)
		assert.Contains(t, content, "DROP TABLE IF EXISTS "+table)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Pet Tags!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_pet_tags.sql"), path)
	require.NoError(t, migrate.ValidateDir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)
}
