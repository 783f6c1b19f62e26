package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

func openTestStore(t *testing.T) *GORMStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"), nil, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSeedEmbeddedCatalogIsRepeatable(t *testing.T) {
	store := openTestStore(t)
	catalog, err := ParseSeed("")
	require.NoError(t, err)

	var links int64
	for _, c := range catalog.Courses {
		links += int64(len(c.Elements))
	}

	seeder := NewSeeder(store.GetDB(), logger.Nop())
	stats, err := seeder.SeedCatalog(catalog)
	require.NoError(t, err)
	assert.Equal(t, int64(len(catalog.Terms)), stats.Terms)
	assert.Equal(t, int64(len(catalog.Domains)), stats.Domains)
	assert.Equal(t, int64(len(catalog.Courses)), stats.Courses)
	assert.Equal(t, links, stats.Links)

	again, err := seeder.SeedCatalog(catalog)
	require.NoError(t, err)
	assert.Equal(t, &SeedStats{}, again)

	counts, err := store.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Elements, counts["elements"])
	assert.Equal(t, links, counts["courses_elements"])
}

func TestSeedRejectsUnknownDomain(t *testing.T) {
	store := openTestStore(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
terms:
  - term_id: 1
courses:
  - course_id: 420-001-DW
    course_title: Orphan
    theory_hours: 1
    lab_hours: 1
    work_hours: 1
    description: Refers to a missing domain
    domain: Nowhere
    term_id: 1
`), 0o600))

	catalog, err := ParseSeed(path)
	require.NoError(t, err)
	_, err = NewSeeder(store.GetDB(), logger.Nop()).SeedCatalog(catalog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown domain "Nowhere"`)

	// the failed run left nothing behind
	counts, err := store.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts["terms"])
}

func TestSeedAdminUser(t *testing.T) {
	auth.Cost = 4
	store := openTestStore(t)
	seeder := NewSeeder(store.GetDB(), logger.Nop())

	t.Setenv("ADMIN_EMAIL", "")
	require.NoError(t, seeder.SeedAdminUser())

	t.Setenv("ADMIN_EMAIL", " Root@Example.com ")
	t.Setenv("ADMIN_PASSWORD", "correct-horse")
	require.NoError(t, seeder.SeedAdminUser())
	require.NoError(t, seeder.SeedAdminUser())

	var admins []model.User
	require.NoError(t, store.GetDB().Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@example.com", admins[0].Email)
	assert.Equal(t, model.GroupServerAdmin, admins[0].AccessGroup)
}

func TestDropCatalogKeepsAccounts(t *testing.T) {
	store := openTestStore(t)
	_, err := RunSeeds(store.GetDB(), "", logger.Nop())
	require.NoError(t, err)

	require.NoError(t, store.DropCatalog(true))
	counts, err := store.TableCounts(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, counts, "courses")
	assert.Contains(t, counts, "course_users")

	require.NoError(t, store.DropCatalog(false))
	counts, err = store.TableCounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}
