package repository

import (
	"context"

	"gorm.io/gorm"
)

// CourseElementGrouping is one row of the course/element cross reference.
type CourseElementGrouping struct {
	TermID       int    `json:"term_id"`
	CourseID     string `json:"course_id"`
	CourseTitle  string `json:"course_title"`
	ElementID    int    `json:"element_id"`
	Element      string `json:"element"`
	ElementHours int    `json:"element_hours"`
	CompetencyID string `json:"competency_id"`
}

// CourseCompetencyGrouping is one row of the competency/course cross reference.
type CourseCompetencyGrouping struct {
	CompetencyID string `json:"competency_id"`
	CourseID     string `json:"course_id"`
	CourseTitle  string `json:"course_title"`
}

// CourseElementGroupings lists every link with the course and element fields
// needed to render it, ordered by term then course.
func (r *Repository) CourseElementGroupings(ctx context.Context) ([]CourseElementGrouping, error) {
	var rows []CourseElementGrouping
	err := r.run(ctx, func(db *gorm.DB) error {
		rows = nil
		return db.Table("courses_elements").
			Select(`DISTINCT courses.term_id, courses.course_id, courses.course_title,
				elements.element_id, elements.element, courses_elements.element_hours, elements.competency_id`).
			Joins("JOIN courses ON courses.course_id = courses_elements.course_id").
			Joins("JOIN elements ON elements.element_id = courses_elements.element_id").
			Order("courses.term_id, courses.course_id, elements.element_id").
			Scan(&rows).Error
	})
	return rows, err
}

// CourseCompetencyGroupings lists each competency with the distinct courses
// that reach it through element links, ordered by competency.
func (r *Repository) CourseCompetencyGroupings(ctx context.Context) ([]CourseCompetencyGrouping, error) {
	var rows []CourseCompetencyGrouping
	err := r.run(ctx, func(db *gorm.DB) error {
		rows = nil
		return db.Table("courses_elements").
			Select("DISTINCT elements.competency_id, courses.course_id, courses.course_title").
			Joins("JOIN courses ON courses.course_id = courses_elements.course_id").
			Joins("JOIN elements ON elements.element_id = courses_elements.element_id").
			Order("elements.competency_id, courses.course_id").
			Scan(&rows).Error
	})
	return rows, err
}
