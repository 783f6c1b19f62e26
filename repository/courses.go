package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

var courseColumns = []string{
	"course_title", "theory_hours", "lab_hours", "work_hours", "description", "domain_id", "term_id",
}

// AddCourse inserts a course after checking its term and domain exist.
func (r *Repository) AddCourse(ctx context.Context, course *model.Course) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		taken, err := courseExists(tx, course.CourseID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("Specified course id already exists")
		}
		if err := requireCourseParents(tx, course.TermID, course.DomainID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(course).Error
	})
}

func (r *Repository) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("course_id = ?", courseID).Take(&course).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course", courseID)
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *Repository) GetCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("course_id").Find(&courses).Error
	})
	return courses, err
}

func (r *Repository) ListCourses(ctx context.Context, req PageRequest) (*Page[model.Course], error) {
	return paginate[model.Course](ctx, r, req, "course_id", noScope)
}

// EditCourse replaces every mutable column of an existing course.
func (r *Repository) EditCourse(ctx context.Context, course *model.Course) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := courseExists(tx, course.CourseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("course", course.CourseID)
		}
		if err := requireCourseParents(tx, course.TermID, course.DomainID); err != nil {
			return err
		}
		return tx.Model(&model.Course{}).
			Where("course_id = ?", course.CourseID).
			Select(courseColumns).
			Omit(clause.Associations).
			Updates(course).Error
	})
}

// DeleteCourse removes a course. With cascadeLinks the course's element
// links go in the same transaction; without it a linked course is refused.
func (r *Repository) DeleteCourse(ctx context.Context, courseID string, cascadeLinks bool) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := courseExists(tx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("course", courseID)
		}
		if cascadeLinks {
			if err := tx.Where("course_id = ?", courseID).Delete(&model.CourseElement{}).Error; err != nil {
				return err
			}
		} else {
			linked, err := courseLinked(tx, courseID)
			if err != nil {
				return err
			}
			if linked {
				return apperr.Referential("Unable to delete course resource: course id is associated to 1 or more elements")
			}
		}
		return tx.Where("course_id = ?", courseID).Delete(&model.Course{}).Error
	})
}

// CoursesOfElement returns the courses linked to an element.
func (r *Repository) CoursesOfElement(ctx context.Context, elementID int) ([]model.Course, error) {
	var courses []model.Course
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Joins("JOIN courses_elements ON courses_elements.course_id = courses.course_id").
			Where("courses_elements.element_id = ?", elementID).
			Select("courses.*").
			Order("courses.term_id, courses.course_id").
			Find(&courses).Error
	})
	return courses, err
}

// CoursesOfCompetency returns the distinct courses linked to any element of
// the competency.
func (r *Repository) CoursesOfCompetency(ctx context.Context, competencyID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.run(ctx, func(db *gorm.DB) error {
		linked := db.Table("courses_elements").
			Select("courses_elements.course_id").
			Joins("JOIN elements ON elements.element_id = courses_elements.element_id").
			Where("elements.competency_id = ?", competencyID)
		return db.Where("course_id IN (?)", linked).Order("course_id").Find(&courses).Error
	})
	return courses, err
}
