package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeysPointAtParents(t *testing.T) {
	store := openTestStore(t)

	tableSQL := func(table string) string {
		var sql string
		require.NoError(t, store.GetDB().
			Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).
			Scan(&sql).Error)
		return sql
	}

	courses := tableSQL("courses")
	assert.Contains(t, courses, "REFERENCES `terms`(`term_id`)")
	assert.Contains(t, courses, "REFERENCES `domains`(`domain_id`)")
	assert.Contains(t, tableSQL("elements"), "REFERENCES `competencies`(`competency_id`)")

	links := tableSQL("courses_elements")
	assert.Contains(t, links, "REFERENCES `courses`(`course_id`)")
	assert.Contains(t, links, "REFERENCES `elements`(`element_id`)")

	for _, parent := range []string{"terms", "domains", "competencies"} {
		assert.NotContains(t, tableSQL(parent), "REFERENCES", parent)
	}
}

func TestReopenLeavesReplacedPoolAlone(t *testing.T) {
	store := openTestStore(t)

	stale := store.GetDB()
	require.NoError(t, store.Reopen(stale))
	fresh := store.GetDB()
	assert.NotSame(t, stale, fresh)

	// a second caller that failed on the same stale pool
	require.NoError(t, store.Reopen(stale))
	assert.Same(t, fresh, store.GetDB())
	require.NoError(t, store.HealthCheck())

	var count int64
	require.NoError(t, fresh.Table("terms").Count(&count).Error)
	assert.Zero(t, count)
}
