package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

const elementOrder = "competency_id, element_id"

// AddElement inserts an element; the store assigns ElementID.
func (r *Repository) AddElement(ctx context.Context, element *model.Element) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		return addElement(tx, element)
	})
}

func addElement(tx *gorm.DB, element *model.Element) error {
	if err := requireElementSlot(tx, element.CompetencyID, element.Element, 0); err != nil {
		return err
	}
	element.ElementID = 0
	return tx.Omit(clause.Associations).Create(element).Error
}

// AddElementToCourse creates an element and links it to the course with the
// given hours. Both rows are written or neither is.
func (r *Repository) AddElementToCourse(ctx context.Context, courseID string, element *model.Element, hours int) error {
	if hours < 0 {
		return apperr.NewValidationError("element_hours", "element_hours must be greater than or equal to 0")
	}
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := courseExists(tx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Referential("Specified course id does not exist")
		}
		if err := addElement(tx, element); err != nil {
			return err
		}
		link := model.CourseElement{CourseID: courseID, ElementID: element.ElementID, ElementHours: hours}
		return tx.Omit(clause.Associations).Create(&link).Error
	})
}

func (r *Repository) GetElement(ctx context.Context, elementID int) (*model.Element, error) {
	var element model.Element
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("element_id = ?", elementID).Take(&element).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("element", elementID)
	}
	if err != nil {
		return nil, err
	}
	return &element, nil
}

func (r *Repository) GetElements(ctx context.Context) ([]model.Element, error) {
	var elements []model.Element
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order(elementOrder).Find(&elements).Error
	})
	return elements, err
}

func (r *Repository) ListElements(ctx context.Context, req PageRequest) (*Page[model.Element], error) {
	return paginate[model.Element](ctx, r, req, elementOrder, noScope)
}

// LatestElement returns the element with the highest id.
func (r *Repository) LatestElement(ctx context.Context) (*model.Element, error) {
	var element model.Element
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("element_id DESC").Take(&element).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperr.NotFoundError{Entity: "element", Message: "No elements exist"}
	}
	if err != nil {
		return nil, err
	}
	return &element, nil
}

// EditElement replaces every mutable column of an existing element. Moving
// it to another competency re-checks name uniqueness there.
func (r *Repository) EditElement(ctx context.Context, element *model.Element) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := elementExists(tx, element.ElementID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("element", element.ElementID)
		}
		if err := requireElementSlot(tx, element.CompetencyID, element.Element, element.ElementID); err != nil {
			return err
		}
		return tx.Model(&model.Element{}).
			Where("element_id = ?", element.ElementID).
			Updates(map[string]interface{}{
				"element_order":    element.ElementOrder,
				"element":          element.Element,
				"element_criteria": element.ElementCriteria,
				"competency_id":    element.CompetencyID,
			}).Error
	})
}

// DeleteElement removes an element, optionally together with its course links.
func (r *Repository) DeleteElement(ctx context.Context, elementID int, cascadeLinks bool) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := elementExists(tx, elementID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("element", elementID)
		}
		if cascadeLinks {
			if err := tx.Where("element_id = ?", elementID).Delete(&model.CourseElement{}).Error; err != nil {
				return err
			}
		} else {
			linked, err := elementLinked(tx, elementID)
			if err != nil {
				return err
			}
			if linked {
				return apperr.Referential("Unable to delete element: element id is associated to 1 or more courses")
			}
		}
		return tx.Where("element_id = ?", elementID).Delete(&model.Element{}).Error
	})
}

func elementsOfCompetencyScope(competencyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("competency_id = ?", competencyID)
	}
}

func (r *Repository) ElementsOfCompetency(ctx context.Context, competencyID string) ([]model.Element, error) {
	var elements []model.Element
	err := r.run(ctx, func(db *gorm.DB) error {
		return elementsOfCompetencyScope(competencyID)(db).Order(elementOrder).Find(&elements).Error
	})
	return elements, err
}

func (r *Repository) ListElementsOfCompetency(ctx context.Context, competencyID string, req PageRequest) (*Page[model.Element], error) {
	return paginate[model.Element](ctx, r, req, elementOrder, elementsOfCompetencyScope(competencyID))
}

func courseElementsScope(courseID, competencyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		linked := db.Session(&gorm.Session{NewDB: true}).
			Table("courses_elements").
			Select("element_id").
			Where("course_id = ?", courseID)
		scoped := db.Where("element_id IN (?)", linked)
		if competencyID != "" {
			scoped = scoped.Where("competency_id = ?", competencyID)
		}
		return scoped
	}
}

// ElementsOfCourse returns the elements linked to a course.
func (r *Repository) ElementsOfCourse(ctx context.Context, courseID string) ([]model.Element, error) {
	var elements []model.Element
	err := r.run(ctx, func(db *gorm.DB) error {
		return courseElementsScope(courseID, "")(db.Model(&model.Element{})).Order(elementOrder).Find(&elements).Error
	})
	return elements, err
}

// ListCourseElementsOfCompetency pages through the elements of one
// competency that are linked to the course.
func (r *Repository) ListCourseElementsOfCompetency(ctx context.Context, courseID, competencyID string, req PageRequest) (*Page[model.Element], error) {
	return paginate[model.Element](ctx, r, req, elementOrder, courseElementsScope(courseID, competencyID))
}
