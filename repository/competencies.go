package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

func (r *Repository) AddCompetency(ctx context.Context, competency *model.Competency) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		return addCompetency(tx, competency)
	})
}

func addCompetency(tx *gorm.DB, competency *model.Competency) error {
	taken, err := competencyExists(tx, competency.CompetencyID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Duplicate("Specified competency id already exists")
	}
	return tx.Omit(clause.Associations).Create(competency).Error
}

// AddCompetencyWithElement creates a competency and its first element in one
// transaction. Mismatched competency ids are rejected before the store is touched.
func (r *Repository) AddCompetencyWithElement(ctx context.Context, cw *model.CompetencyWithElement) error {
	if err := cw.Validate(); err != nil {
		return err
	}
	return r.transaction(ctx, func(tx *gorm.DB) error {
		if err := addCompetency(tx, cw.Competency); err != nil {
			return err
		}
		return addElement(tx, cw.Element)
	})
}

func (r *Repository) GetCompetency(ctx context.Context, competencyID string) (*model.Competency, error) {
	var competency model.Competency
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("competency_id = ?", competencyID).Take(&competency).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("competency", competencyID)
	}
	if err != nil {
		return nil, err
	}
	return &competency, nil
}

func (r *Repository) GetCompetencies(ctx context.Context) ([]model.Competency, error) {
	var competencies []model.Competency
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("competency_id").Find(&competencies).Error
	})
	return competencies, err
}

func (r *Repository) ListCompetencies(ctx context.Context, req PageRequest) (*Page[model.Competency], error) {
	return paginate[model.Competency](ctx, r, req, "competency_id", noScope)
}

// EditCompetency replaces statement, achievement context and type.
func (r *Repository) EditCompetency(ctx context.Context, competency *model.Competency) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := competencyExists(tx, competency.CompetencyID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("competency", competency.CompetencyID)
		}
		return tx.Model(&model.Competency{}).
			Where("competency_id = ?", competency.CompetencyID).
			Updates(map[string]interface{}{
				"competency":             competency.Competency,
				"competency_achievement": competency.CompetencyAchievement,
				"competency_type":        competency.CompetencyType,
			}).Error
	})
}

// DeleteCompetency removes a competency that owns no elements.
func (r *Repository) DeleteCompetency(ctx context.Context, competencyID string) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := competencyExists(tx, competencyID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("competency", competencyID)
		}
		referenced, err := competencyReferenced(tx, competencyID)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Referential("Unable to delete competency: competency id is associated to 1 or more elements")
		}
		return tx.Where("competency_id = ?", competencyID).Delete(&model.Competency{}).Error
	})
}

func competenciesOfCourseScope(courseID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		owned := db.Session(&gorm.Session{NewDB: true}).
			Table("elements").
			Select("elements.competency_id").
			Joins("JOIN courses_elements ON courses_elements.element_id = elements.element_id").
			Where("courses_elements.course_id = ?", courseID)
		return db.Where("competency_id IN (?)", owned)
	}
}

// CompetenciesOfCourse returns the distinct competencies reached through the
// course's element links.
func (r *Repository) CompetenciesOfCourse(ctx context.Context, courseID string) ([]model.Competency, error) {
	var competencies []model.Competency
	err := r.run(ctx, func(db *gorm.DB) error {
		return competenciesOfCourseScope(courseID)(db.Model(&model.Competency{})).
			Order("competency_id").
			Find(&competencies).Error
	})
	return competencies, err
}

func (r *Repository) ListCompetenciesOfCourse(ctx context.Context, courseID string, req PageRequest) (*Page[model.Competency], error) {
	return paginate[model.Competency](ctx, r, req, "competency_id", competenciesOfCourseScope(courseID))
}
