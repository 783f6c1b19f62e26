package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/model"
)

// SearchResults holds the four independent result sets of a search. A set
// is nil when its lookup failed; the failure is kept in Failures under the
// set's name.
type SearchResults struct {
	Courses      []model.Course
	Competencies []model.Competency
	Elements     []model.Element
	Domains      []model.Domain
	Failures     map[string]error
}

// likePattern upper-cases q and wraps it for a substring LIKE. LIKE
// wildcards in q are escaped.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToUpper(r.Replace(q)) + "%"
}

// Search matches query case-insensitively against courses, competencies,
// elements and domains. The lookups run one after another and do not abort
// each other.
func (r *Repository) Search(ctx context.Context, query string) *SearchResults {
	pattern := likePattern(query)
	res := &SearchResults{Failures: map[string]error{}}

	err := r.run(ctx, func(db *gorm.DB) error {
		res.Courses = nil
		return db.Model(&model.Course{}).
			Select("courses.*").
			Joins("JOIN terms ON terms.term_id = courses.term_id").
			Joins("JOIN domains ON domains.domain_id = courses.domain_id").
			Where(`UPPER(courses.course_id) LIKE ? ESCAPE '\'
				OR UPPER(courses.course_title) LIKE ? ESCAPE '\'
				OR UPPER(courses.description) LIKE ? ESCAPE '\'
				OR UPPER(domains.domain) LIKE ? ESCAPE '\'
				OR UPPER(terms.term_name) LIKE ? ESCAPE '\'`,
				pattern, pattern, pattern, pattern, pattern).
			Order("courses.term_id, courses.course_id").
			Find(&res.Courses).Error
	})
	r.recordSearchFailure(res, "courses", err, func() { res.Courses = nil })

	err = r.run(ctx, func(db *gorm.DB) error {
		res.Competencies = nil
		return db.Where(`UPPER(competency_id) LIKE ? ESCAPE '\'
				OR UPPER(competency) LIKE ? ESCAPE '\'
				OR UPPER(competency_achievement) LIKE ? ESCAPE '\'
				OR UPPER(competency_type) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern).
			Order("competency_id").
			Find(&res.Competencies).Error
	})
	r.recordSearchFailure(res, "competencies", err, func() { res.Competencies = nil })

	err = r.run(ctx, func(db *gorm.DB) error {
		res.Elements = nil
		return db.Where(`UPPER(element) LIKE ? ESCAPE '\'
				OR UPPER(element_criteria) LIKE ? ESCAPE '\'
				OR UPPER(competency_id) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern).
			Order(elementOrder).
			Find(&res.Elements).Error
	})
	r.recordSearchFailure(res, "elements", err, func() { res.Elements = nil })

	err = r.run(ctx, func(db *gorm.DB) error {
		res.Domains = nil
		return db.Where(`UPPER(domain) LIKE ? ESCAPE '\'
				OR UPPER(domain_description) LIKE ? ESCAPE '\'`,
			pattern, pattern).
			Order("domain_id").
			Find(&res.Domains).Error
	})
	r.recordSearchFailure(res, "domains", err, func() { res.Domains = nil })

	return res
}

func (r *Repository) recordSearchFailure(res *SearchResults, set string, err error, clear func()) {
	if err == nil {
		return
	}
	clear()
	res.Failures[set] = err
	r.log.Warn("search lookup failed", "set", set, "error", err)
}
