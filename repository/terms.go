package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

func (r *Repository) AddTerm(ctx context.Context, term *model.Term) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		taken, err := termExists(tx, term.TermID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("Term id already exists")
		}
		return tx.Omit(clause.Associations).Create(term).Error
	})
}

func (r *Repository) GetTerm(ctx context.Context, termID int) (*model.Term, error) {
	var term model.Term
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("term_id = ?", termID).Take(&term).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("term", termID)
	}
	if err != nil {
		return nil, err
	}
	return &term, nil
}

// GetTerms returns every term ordered by id.
func (r *Repository) GetTerms(ctx context.Context) ([]model.Term, error) {
	var terms []model.Term
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("term_id").Find(&terms).Error
	})
	return terms, err
}

func (r *Repository) ListTerms(ctx context.Context, req PageRequest) (*Page[model.Term], error) {
	return paginate[model.Term](ctx, r, req, "term_id", noScope)
}

// EditTerm replaces the name of an existing term.
func (r *Repository) EditTerm(ctx context.Context, term *model.Term) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := termExists(tx, term.TermID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("term", term.TermID)
		}
		return tx.Model(&model.Term{}).Where("term_id = ?", term.TermID).Update("term_name", term.TermName).Error
	})
}

// DeleteTerm removes a term that no course references.
func (r *Repository) DeleteTerm(ctx context.Context, termID int) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := termExists(tx, termID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("term", termID)
		}
		referenced, err := termReferenced(tx, termID)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Referential("Unable to delete term resource: term id is associated to 1 or more courses")
		}
		return tx.Where("term_id = ?", termID).Delete(&model.Term{}).Error
	})
}

func noScope(db *gorm.DB) *gorm.DB { return db }
