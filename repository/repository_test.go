package repository

import (
	"context"
	"database/sql/driver"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/database"
	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

func TestDuplicateNaturalKeys(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	term := mustTerm(t, repo, 1)
	domain := mustDomain(t, repo, "Programming")
	course := mustCourse(t, repo, "420-150-DW", term.TermID, domain.DomainID)
	competency := mustCompetency(t, repo, "00Z6")

	dupTerm, _ := model.NewTerm(1)
	err := repo.AddTerm(ctx, dupTerm)
	assert.IsType(t, &apperr.DuplicateKeyError{}, err)
	assert.EqualError(t, err, "Term id already exists")

	dupDomain, _ := model.NewDomain("Programming", "again")
	err = repo.AddDomain(ctx, dupDomain)
	assert.IsType(t, &apperr.DuplicateKeyError{}, err)

	dupCourse := *course
	err = repo.AddCourse(ctx, &dupCourse)
	assert.IsType(t, &apperr.DuplicateKeyError{}, err)
	assert.EqualError(t, err, "Specified course id already exists")

	dupCompetency := *competency
	err = repo.AddCompetency(ctx, &dupCompetency)
	assert.IsType(t, &apperr.DuplicateKeyError{}, err)
}

func TestElementNameUniquePerCompetency(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCompetency(t, repo, "00Z6")
	mustCompetency(t, repo, "00Z7")
	mustElement(t, repo, "00Z6", "Solve Any Programming Problem")

	same, _ := model.NewElement(2, "Solve Any Programming Problem", "c", "00Z6")
	err := repo.AddElement(ctx, same)
	assert.IsType(t, &apperr.DuplicateKeyError{}, err)
	assert.EqualError(t, err, "Element name already exists for the provided competency id.")

	other, _ := model.NewElement(1, "Solve Any Programming Problem", "c", "00Z7")
	require.NoError(t, repo.AddElement(ctx, other))
	assert.NotZero(t, other.ElementID)
}

func TestCourseRequiresExistingParents(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustTerm(t, repo, 1)
	domain := mustDomain(t, repo, "Programming")

	course, _ := model.NewCourse("420-150-DW", "Intro", 3, 3, 3, "d", domain.DomainID, 9)
	err := repo.AddCourse(ctx, course)
	assert.IsType(t, &apperr.ReferentialError{}, err)
	assert.EqualError(t, err, "Specified term id does not exist")

	course, _ = model.NewCourse("420-150-DW", "Intro", 3, 3, 3, "d", 99, 1)
	err = repo.AddCourse(ctx, course)
	assert.EqualError(t, err, "Specified domain id does not exist")

	_, err = repo.GetCourse(ctx, "420-150-DW")
	assert.True(t, apperr.IsNotFound(err))
}

func TestReferentialBlockingAndRelease(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	term := mustTerm(t, repo, 7)
	domain := mustDomain(t, repo, "Programming")
	mustCourse(t, repo, "420-999-DW", term.TermID, domain.DomainID)
	mustCompetency(t, repo, "00Z6")
	element := mustElement(t, repo, "00Z6", "Solve Any Programming Problem")

	err := repo.DeleteTerm(ctx, 7)
	assert.IsType(t, &apperr.ReferentialError{}, err)
	assert.EqualError(t, err, "Unable to delete term resource: term id is associated to 1 or more courses")

	err = repo.DeleteDomain(ctx, domain.DomainID)
	assert.IsType(t, &apperr.ReferentialError{}, err)

	err = repo.DeleteCompetency(ctx, "00Z6")
	assert.IsType(t, &apperr.ReferentialError{}, err)
	assert.EqualError(t, err, "Unable to delete competency: competency id is associated to 1 or more elements")

	require.NoError(t, repo.DeleteCourse(ctx, "420-999-DW", false))
	require.NoError(t, repo.DeleteTerm(ctx, 7))
	require.NoError(t, repo.DeleteDomain(ctx, domain.DomainID))
	require.NoError(t, repo.DeleteElement(ctx, element.ElementID, false))
	require.NoError(t, repo.DeleteCompetency(ctx, "00Z6"))

	err = repo.DeleteTerm(ctx, 7)
	assert.True(t, apperr.IsNotFound(err))
}

// Writes through the raw store skip the repository checks, so the schema
// itself has to refuse them.
func TestStoreEnforcesForeignKeys(t *testing.T) {
	repo, store := newTestRepository(t)
	db := store.GetDB()

	domain := mustDomain(t, repo, "Programming")
	course, _ := model.NewCourse("420-150-DW", "Intro", 3, 3, 3, "d", domain.DomainID, 9)
	err := db.Create(course).Error
	require.Error(t, err)
	var refErr *apperr.ReferentialError
	assert.True(t, errors.As(translate(err), &refErr), "orphan course: %v", err)

	var count int64
	require.NoError(t, db.Model(&model.Course{}).Count(&count).Error)
	assert.Zero(t, count)

	mustCompetency(t, repo, "00Z6")
	mustElement(t, repo, "00Z6", "Solve Any Programming Problem")
	err = db.Where("competency_id = ?", "00Z6").Delete(&model.Competency{}).Error
	require.Error(t, err)
	assert.True(t, errors.As(translate(err), &refErr), "owning competency: %v", err)

	_, err = repo.GetCompetency(context.Background(), "00Z6")
	assert.NoError(t, err)
}

func TestDeleteCourseCascade(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	term := mustTerm(t, repo, 1)
	domain := mustDomain(t, repo, "Programming")
	mustCourse(t, repo, "420-150-DW", term.TermID, domain.DomainID)
	mustCompetency(t, repo, "00Z6")
	element := mustElement(t, repo, "00Z6", "e1")
	mustLink(t, repo, "420-150-DW", element.ElementID, 10)

	err := repo.DeleteCourse(ctx, "420-150-DW", false)
	assert.IsType(t, &apperr.ReferentialError{}, err)

	require.NoError(t, repo.DeleteCourse(ctx, "420-150-DW", true))
	links, err := repo.CourseElementHours(ctx, "420-150-DW")
	require.NoError(t, err)
	assert.Empty(t, links)

	courses, err := repo.CoursesOfElement(ctx, element.ElementID)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestEditOperations(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustTerm(t, repo, 1)
	mustTerm(t, repo, 2)
	domain := mustDomain(t, repo, "Programming")
	course := mustCourse(t, repo, "420-150-DW", 1, domain.DomainID)

	course.CourseTitle = "Renamed"
	course.TermID = 2
	course.LabHours = 0
	require.NoError(t, repo.EditCourse(ctx, course))
	got, err := repo.GetCourse(ctx, "420-150-DW")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.CourseTitle)
	assert.Equal(t, 2, got.TermID)
	assert.Equal(t, 0, got.LabHours)

	missing, _ := model.NewCourse("000-000-XX", "t", 1, 1, 1, "d", domain.DomainID, 1)
	assert.True(t, apperr.IsNotFound(repo.EditCourse(ctx, missing)))

	competency := mustCompetency(t, repo, "00Z6")
	competency.CompetencyType = model.CompetencyOptional
	require.NoError(t, repo.EditCompetency(ctx, competency))
	gotCompetency, err := repo.GetCompetency(ctx, "00Z6")
	require.NoError(t, err)
	assert.Equal(t, model.CompetencyOptional, gotCompetency.CompetencyType)

	renamed, _ := model.NewNamedTerm(1, "Autumn")
	require.NoError(t, repo.EditTerm(ctx, renamed))
	gotTerm, err := repo.GetTerm(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Autumn", gotTerm.TermName)

	e1 := mustElement(t, repo, "00Z6", "one")
	mustElement(t, repo, "00Z6", "two")
	e1.Element = "two"
	assert.IsType(t, &apperr.DuplicateKeyError{}, repo.EditElement(ctx, e1))
	e1.Element = "one, revised"
	e1.ElementOrder = 3
	require.NoError(t, repo.EditElement(ctx, e1))
	gotElement, err := repo.GetElement(ctx, e1.ElementID)
	require.NoError(t, err)
	assert.Equal(t, "one, revised", gotElement.Element)
	assert.Equal(t, 3, gotElement.ElementOrder)
}

func TestAddCompetencyWithElement(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	cw, err := model.CompetencyWithElementFromRecord(model.Record{
		"competency_id": "00Z6", "competency": "Solve problems", "competency_achievement": "lab",
		"competency_type": model.CompetencyMandatory,
		"element_order": 1, "element": "Solve Any Programming Problem", "element_criteria": "c",
		"element_competency_id": "00Z7",
	})
	require.NoError(t, err)
	err = repo.AddCompetencyWithElement(ctx, cw)
	assert.IsType(t, &apperr.ValidationError{}, err)
	_, err = repo.GetCompetency(ctx, "00Z6")
	assert.True(t, apperr.IsNotFound(err), "mismatched ids must never reach the store")

	cw.Element.CompetencyID = "00Z6"
	require.NoError(t, repo.AddCompetencyWithElement(ctx, cw))

	elements, err := repo.ElementsOfCompetency(ctx, "00Z6")
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "Solve Any Programming Problem", elements[0].Element)

	assert.IsType(t, &apperr.DuplicateKeyError{}, repo.AddCompetencyWithElement(ctx, cw))
}

func TestAddElementToCourseRollsBack(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	term := mustTerm(t, repo, 1)
	domain := mustDomain(t, repo, "Programming")
	mustCourse(t, repo, "420-150-DW", term.TermID, domain.DomainID)
	mustCompetency(t, repo, "00Z6")

	element, _ := model.NewElement(1, "Linked", "c", "00Z6")
	require.NoError(t, repo.AddElementToCourse(ctx, "420-150-DW", element, 12))
	links, err := repo.CourseElementHours(ctx, "420-150-DW")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, 12, links[0].ElementHours)

	missingCourse, _ := model.NewElement(1, "Orphan", "c", "00Z6")
	err = repo.AddElementToCourse(ctx, "000-000-XX", missingCourse, 12)
	assert.IsType(t, &apperr.ReferentialError{}, err)

	// fail the link insert after the element insert has run
	boom := errors.New("link insert failed")
	require.NoError(t, store.GetDB().Callback().Create().Before("gorm:create").
		Register("test:fail_links", func(db *gorm.DB) {
			if db.Statement.Table == "courses_elements" {
				_ = db.AddError(boom)
			}
		}))
	rolledBack, _ := model.NewElement(2, "Rolled back", "c", "00Z6")
	err = repo.AddElementToCourse(ctx, "420-150-DW", rolledBack, 5)
	require.ErrorIs(t, err, boom)

	elements, err := repo.ElementsOfCompetency(ctx, "00Z6")
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "Linked", elements[0].Element)
}

func TestLinks(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	term := mustTerm(t, repo, 1)
	domain := mustDomain(t, repo, "Programming")
	mustCourse(t, repo, "420-150-DW", term.TermID, domain.DomainID)
	mustCourse(t, repo, "420-160-DW", term.TermID, domain.DomainID)
	mustCompetency(t, repo, "00Z6")
	e1 := mustElement(t, repo, "00Z6", "e1")
	e2 := mustElement(t, repo, "00Z6", "e2")

	mustLink(t, repo, "420-150-DW", e1.ElementID, 10)
	mustLink(t, repo, "420-150-DW", e2.ElementID, 20)
	mustLink(t, repo, "420-160-DW", e1.ElementID, 30)

	dup, _ := model.NewCourseElement("420-150-DW", e1.ElementID, 99)
	assert.IsType(t, &apperr.DuplicateKeyError{}, repo.AddCourseElementLink(ctx, dup))

	orphan, _ := model.NewCourseElement("420-150-DW", 999, 1)
	assert.IsType(t, &apperr.ReferentialError{}, repo.AddCourseElementLink(ctx, orphan))

	require.NoError(t, repo.EditCourseElementHours(ctx, "420-150-DW", e1.ElementID, 15))
	assert.True(t, apperr.IsNotFound(repo.EditCourseElementHours(ctx, "420-160-DW", e2.ElementID, 1)))

	competencies, err := repo.CompetenciesOfCourse(ctx, "420-150-DW")
	require.NoError(t, err)
	require.Len(t, competencies, 1, "competencies are distinct")

	courses, err := repo.CoursesOfCompetency(ctx, "00Z6")
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	elements, err := repo.ElementsOfCourse(ctx, "420-150-DW")
	require.NoError(t, err)
	assert.Len(t, elements, 2)

	require.NoError(t, repo.DeleteCourseElementLink(ctx, "420-150-DW", e2.ElementID))
	assert.True(t, apperr.IsNotFound(repo.DeleteCourseElementLink(ctx, "420-150-DW", e2.ElementID)))

	require.NoError(t, repo.DeleteAllCourseLinksOfElement(ctx, e1.ElementID))
	assert.True(t, apperr.IsNotFound(repo.DeleteAllCourseLinksOfElement(ctx, e1.ElementID)))
	assert.True(t, apperr.IsNotFound(repo.DeleteAllElementLinksOfCourse(ctx, "420-150-DW")))
}

func TestGroupings(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustTerm(t, repo, 1)
	mustTerm(t, repo, 2)
	domain := mustDomain(t, repo, "Programming")
	mustCourse(t, repo, "420-200-DW", 2, domain.DomainID)
	mustCourse(t, repo, "420-100-DW", 1, domain.DomainID)
	mustCompetency(t, repo, "00Z6")
	e1 := mustElement(t, repo, "00Z6", "e1")
	e2 := mustElement(t, repo, "00Z6", "e2")
	mustLink(t, repo, "420-200-DW", e1.ElementID, 10)
	mustLink(t, repo, "420-100-DW", e1.ElementID, 5)
	mustLink(t, repo, "420-100-DW", e2.ElementID, 7)

	rows, err := repo.CourseElementGroupings(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "420-100-DW", rows[0].CourseID)
	assert.Equal(t, 1, rows[0].TermID)
	assert.Equal(t, "420-200-DW", rows[2].CourseID)
	assert.Equal(t, 10, rows[2].ElementHours)

	competencyRows, err := repo.CourseCompetencyGroupings(ctx)
	require.NoError(t, err)
	require.Len(t, competencyRows, 2)
	assert.Equal(t, "00Z6", competencyRows[0].CompetencyID)
	assert.Equal(t, "420-100-DW", competencyRows[0].CourseID)
}

func TestSearch(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	mustTerm(t, repo, 1)
	domain := mustDomain(t, repo, "Programming")
	mustCourse(t, repo, "420-150-DW", 1, domain.DomainID)
	mustCompetency(t, repo, "00Z6")
	mustElement(t, repo, "00Z6", "Solve Any Programming Problem")

	res := repo.Search(ctx, "programming")
	assert.Empty(t, res.Failures)
	assert.Len(t, res.Courses, 1, "matched through the domain name")
	assert.Len(t, res.Elements, 1)
	assert.Len(t, res.Domains, 1)
	assert.NotNil(t, res.Competencies)
	assert.Empty(t, res.Competencies)

	res = repo.Search(ctx, "fall")
	assert.Len(t, res.Courses, 1, "matched through the term name")

	res = repo.Search(ctx, "100%")
	assert.Empty(t, res.Courses, "LIKE wildcards in the query are literal")

	// break one lookup; the other three still answer
	db := store.GetDB()
	require.NoError(t, db.Migrator().DropTable(&model.CourseElement{}))
	require.NoError(t, db.Migrator().DropTable(&model.Element{}))

	res = repo.Search(ctx, "programming")
	assert.Nil(t, res.Elements)
	assert.Contains(t, res.Failures, "elements")
	assert.Len(t, res.Courses, 1)
	assert.Len(t, res.Domains, 1)
	assert.NotNil(t, res.Competencies)
}

func TestUsers(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	user, err := model.NewUser("Ada", "Ada@Example.com", "hash", model.GroupMember)
	require.NoError(t, err)
	require.NoError(t, repo.AddUser(ctx, user))

	again, _ := model.NewUser("Ada", "ada@example.com", "hash", model.GroupMember)
	assert.IsType(t, &apperr.DuplicateKeyError{}, repo.AddUser(ctx, again))

	got, err := repo.GetUserByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.Blocked)

	blocked, err := repo.ToggleUserBlock(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, repo.EditUserGroup(ctx, "ada@example.com", model.GroupAdmin))
	assert.IsType(t, &apperr.ValidationError{}, repo.EditUserGroup(ctx, "ada@example.com", model.Group(9)))

	require.NoError(t, repo.UpdateUserPassword(ctx, "ada@example.com", "newhash"))
	got, err = repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GroupAdmin, got.AccessGroup)
	assert.Equal(t, 1, got.TokenVersion)
	assert.Equal(t, "newhash", got.PasswordHash)

	members, err := repo.GetMembers(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, repo.RevokeToken(ctx, "jti-1", user.ID, time.Now().Add(time.Hour), "logout"))
	require.NoError(t, repo.RevokeToken(ctx, "jti-1", user.ID, time.Now().Add(time.Hour), "logout"))
	revoked, err := repo.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, repo.DeleteUser(ctx, "ada@example.com"))
	assert.True(t, apperr.IsNotFound(repo.DeleteUser(ctx, "ada@example.com")))
}

func TestAuditLog(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.RecordAudit(ctx, 1, "user_block", "a@example.com", "127.0.0.1", map[string]interface{}{"blocked": true}))
	require.NoError(t, repo.RecordAudit(ctx, 1, "user_group_edit", "a@example.com", "127.0.0.1", map[string]interface{}{"group": 2}))

	page, err := repo.ListAuditLogs(ctx, "", FirstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)

	page, err = repo.ListAuditLogs(ctx, "user_block", FirstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.JSONEq(t, `{"blocked":true}`, string(page.Items[0].Details))
}

// flakyStore counts reopen cycles. Ops decide whether the store is healthy
// from the count, which reaches healAt after that many reopens.
type flakyStore struct {
	db      *gorm.DB
	reopens int
	healAt  int
}

func (f *flakyStore) GetDB() *gorm.DB { return f.db }

func (f *flakyStore) Reopen(*gorm.DB) error {
	f.reopens++
	return nil
}

func (f *flakyStore) healthy() bool {
	return f.healAt > 0 && f.reopens >= f.healAt
}

func newFlakyStore(t *testing.T, healAt int) *flakyStore {
	t.Helper()
	store, err := database.OpenSQLite(filepath.Join(t.TempDir(), "flaky.db"), nil, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return &flakyStore{db: store.GetDB(), healAt: healAt}
}

func TestRunGivesUpAfterThreeReopens(t *testing.T) {
	store := newFlakyStore(t, 0)
	repo := New(store, logger.Nop())

	calls := 0
	err := repo.run(context.Background(), func(db *gorm.DB) error {
		calls++
		return driver.ErrBadConn
	})

	var unavailable *apperr.StorageUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, ReconnectAttempts, unavailable.Attempts)
	assert.Equal(t, 3, store.reopens)
	assert.Equal(t, 4, calls, "one initial try plus one per reopen")
}

func TestRunRecoversAfterReopen(t *testing.T) {
	store := newFlakyStore(t, 2)
	repo := New(store, logger.Nop())

	err := repo.run(context.Background(), func(db *gorm.DB) error {
		if !store.healthy() {
			return driver.ErrBadConn
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, store.reopens)
}

func TestRunDoesNotRetryDataErrors(t *testing.T) {
	store := newFlakyStore(t, 0)
	repo := New(store, logger.Nop())

	err := repo.run(context.Background(), func(db *gorm.DB) error {
		return apperr.Duplicate("Term id already exists")
	})
	assert.IsType(t, &apperr.DuplicateKeyError{}, err)
	assert.Zero(t, store.reopens)
}
