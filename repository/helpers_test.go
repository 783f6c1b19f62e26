package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/course-catalog/database"
	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

// newTestRepository returns a repository over a fresh migrated sqlite file.
func newTestRepository(t *testing.T, opts ...Option) (*Repository, *database.GORMStore) {
	t.Helper()
	store, err := database.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"), nil, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	return New(store, logger.Nop(), opts...), store
}

func mustTerm(t *testing.T, r *Repository, id int) *model.Term {
	t.Helper()
	term, err := model.NewTerm(id)
	require.NoError(t, err)
	require.NoError(t, r.AddTerm(context.Background(), term))
	return term
}

func mustDomain(t *testing.T, r *Repository, name string) *model.Domain {
	t.Helper()
	domain, err := model.NewDomain(name, name+" description")
	require.NoError(t, err)
	require.NoError(t, r.AddDomain(context.Background(), domain))
	return domain
}

func mustCourse(t *testing.T, r *Repository, id string, termID, domainID int) *model.Course {
	t.Helper()
	course, err := model.NewCourse(id, "Course "+id, 3, 3, 3, "About "+id, domainID, termID)
	require.NoError(t, err)
	require.NoError(t, r.AddCourse(context.Background(), course))
	return course
}

func mustCompetency(t *testing.T, r *Repository, id string) *model.Competency {
	t.Helper()
	competency, err := model.NewCompetency(id, "Competency "+id, "In a lab", model.CompetencyMandatory)
	require.NoError(t, err)
	require.NoError(t, r.AddCompetency(context.Background(), competency))
	return competency
}

func mustElement(t *testing.T, r *Repository, competencyID, name string) *model.Element {
	t.Helper()
	element, err := model.NewElement(1, name, "criteria for "+name, competencyID)
	require.NoError(t, err)
	require.NoError(t, r.AddElement(context.Background(), element))
	return element
}

func mustLink(t *testing.T, r *Repository, courseID string, elementID, hours int) {
	t.Helper()
	link, err := model.NewCourseElement(courseID, elementID, hours)
	require.NoError(t, err)
	require.NoError(t, r.AddCourseElementLink(context.Background(), link))
}

// seedTerms adds terms 1..n.
func seedTerms(t *testing.T, r *Repository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		mustTerm(t, r, i)
	}
}

func courseCode(i int) string {
	return fmt.Sprintf("420-%03d-DW", i)
}
