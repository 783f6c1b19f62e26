package repository

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

func TestResolveBounds(t *testing.T) {
	w, err := PageNumber(1).Resolve(120, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Offset)
	assert.Equal(t, 3, w.MaxPage)
	assert.Nil(t, w.Previous)
	require.NotNil(t, w.Next)
	assert.Equal(t, 2, *w.Next)

	w, err = PageNumber(3).Resolve(120, 50)
	require.NoError(t, err)
	assert.Equal(t, 100, w.Offset)
	require.NotNil(t, w.Previous)
	assert.Equal(t, 2, *w.Previous)
	assert.Nil(t, w.Next)

	for _, n := range []int{0, -1, 4} {
		_, err := PageNumber(n).Resolve(120, 50)
		var pageErr *apperr.InvalidPageError
		require.True(t, errors.As(err, &pageErr), "page %d", n)
		assert.Equal(t, 3, pageErr.MaxPage)
		assert.Equal(t, "Page number must be from 1, up to a maximum of 3", pageErr.Error())
	}
}

func TestResolveExactlyFullLastPageHasNoNext(t *testing.T) {
	w, err := PageNumber(2).Resolve(100, 50)
	require.NoError(t, err)
	assert.Nil(t, w.Next)

	w, err = PageNumber(1).Resolve(50, 50)
	require.NoError(t, err)
	assert.Nil(t, w.Next)
	assert.Nil(t, w.Previous)
}

func TestResolveEmptyListing(t *testing.T) {
	w, err := FirstPage().Resolve(0, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Number)
	assert.Equal(t, 0, w.MaxPage)
	assert.Nil(t, w.Next)
	assert.Nil(t, w.Previous)

	_, err = PageNumber(1).Resolve(0, 50)
	var pageErr *apperr.InvalidPageError
	require.True(t, errors.As(err, &pageErr))
	assert.Equal(t, 0, pageErr.MaxPage)
}

func TestListTermsConcatenatesToFullListing(t *testing.T) {
	repo, _ := newTestRepository(t, WithPageSize(7))
	ctx := context.Background()

	// inserted out of order so the listing order comes from the query
	for _, id := range []int{9, 3, 17, 1, 12, 5, 20, 2, 8, 15, 4, 11, 6, 19, 7, 13, 10, 18, 14, 16} {
		mustTerm(t, repo, id)
	}

	all, err := repo.GetTerms(ctx)
	require.NoError(t, err)
	require.Len(t, all, 20)

	var concatenated []model.Term
	page, err := repo.ListTerms(ctx, FirstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(20), page.Count)
	assert.Equal(t, 3, page.MaxPage)
	for {
		concatenated = append(concatenated, page.Items...)
		if page.Next == nil {
			break
		}
		page, err = repo.ListTerms(ctx, PageNumber(*page.Next))
		require.NoError(t, err)
	}
	assert.Equal(t, all, concatenated)

	_, err = repo.ListTerms(ctx, PageNumber(0))
	assert.IsType(t, &apperr.InvalidPageError{}, err)
	_, err = repo.ListTerms(ctx, PageNumber(4))
	assert.IsType(t, &apperr.InvalidPageError{}, err)
}

func TestListElementsOrderedByCompetencyThenID(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCompetency(t, repo, "00B2")
	mustCompetency(t, repo, "00A1")
	e1 := mustElement(t, repo, "00B2", "first")
	e2 := mustElement(t, repo, "00A1", "second")
	e3 := mustElement(t, repo, "00B2", "third")

	page, err := repo.ListElements(ctx, FirstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, e2.ElementID, page.Items[0].ElementID)
	assert.Equal(t, e1.ElementID, page.Items[1].ElementID)
	assert.Equal(t, e3.ElementID, page.Items[2].ElementID)
}

func TestListEmptyImplicitPage(t *testing.T) {
	repo, _ := newTestRepository(t)

	page, err := repo.ListCourses(context.Background(), FirstPage())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, int64(0), page.Count)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)

	_, err = repo.ListCourses(context.Background(), PageNumber(1))
	assert.IsType(t, &apperr.InvalidPageError{}, err)
}
