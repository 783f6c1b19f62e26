package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

// AddCourseElementLink links an existing course and element.
func (r *Repository) AddCourseElementLink(ctx context.Context, link *model.CourseElement) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := requireLinkEnds(tx, link.CourseID, link.ElementID); err != nil {
			return err
		}
		taken, err := linkExists(tx, link.CourseID, link.ElementID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("Element is already linked to the specified course")
		}
		return tx.Omit(clause.Associations).Create(link).Error
	})
}

// EditCourseElementHours changes the hours of an existing link.
func (r *Repository) EditCourseElementHours(ctx context.Context, courseID string, elementID, hours int) error {
	if hours < 0 {
		return apperr.NewValidationError("element_hours", "element_hours must be greater than or equal to 0")
	}
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := linkExists(tx, courseID, elementID)
		if err != nil {
			return err
		}
		if !ok {
			return linkNotFound(courseID, elementID)
		}
		return tx.Model(&model.CourseElement{}).
			Where("course_id = ? AND element_id = ?", courseID, elementID).
			Update("element_hours", hours).Error
	})
}

func (r *Repository) DeleteCourseElementLink(ctx context.Context, courseID string, elementID int) error {
	return r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("course_id = ? AND element_id = ?", courseID, elementID).Delete(&model.CourseElement{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return linkNotFound(courseID, elementID)
		}
		return nil
	})
}

// DeleteAllElementLinksOfCourse removes every link of the course.
func (r *Repository) DeleteAllElementLinksOfCourse(ctx context.Context, courseID string) error {
	return r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("course_id = ?", courseID).Delete(&model.CourseElement{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperr.NotFoundError{Entity: "course element", Key: courseID,
				Message: "Specified course id has no linked elements"}
		}
		return nil
	})
}

// DeleteAllCourseLinksOfElement removes every link of the element.
func (r *Repository) DeleteAllCourseLinksOfElement(ctx context.Context, elementID int) error {
	return r.run(ctx, func(db *gorm.DB) error {
		res := db.Where("element_id = ?", elementID).Delete(&model.CourseElement{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperr.NotFoundError{Entity: "course element", Message: "Specified element id has no linked courses"}
		}
		return nil
	})
}

// CourseElementHours returns the links of a course, ordered by element id.
func (r *Repository) CourseElementHours(ctx context.Context, courseID string) ([]model.CourseElement, error) {
	var links []model.CourseElement
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("course_id = ?", courseID).Order("element_id").Find(&links).Error
	})
	return links, err
}

func linkNotFound(courseID string, elementID int) *apperr.NotFoundError {
	return &apperr.NotFoundError{
		Entity:  "course element",
		Key:     fmt.Sprintf("%s/%d", courseID, elementID),
		Message: "Specified course and element are not linked",
	}
}
