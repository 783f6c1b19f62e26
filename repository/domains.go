package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

// AddDomain inserts a domain; the store assigns DomainID, which is written
// back into domain.
func (r *Repository) AddDomain(ctx context.Context, domain *model.Domain) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		taken, err := domainNameTaken(tx, domain.Domain, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("Domain name already exists")
		}
		domain.DomainID = 0
		return tx.Omit(clause.Associations).Create(domain).Error
	})
}

func (r *Repository) GetDomain(ctx context.Context, domainID int) (*model.Domain, error) {
	var domain model.Domain
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("domain_id = ?", domainID).Take(&domain).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("domain", domainID)
	}
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

func (r *Repository) GetDomains(ctx context.Context) ([]model.Domain, error) {
	var domains []model.Domain
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("domain_id").Find(&domains).Error
	})
	return domains, err
}

func (r *Repository) ListDomains(ctx context.Context, req PageRequest) (*Page[model.Domain], error) {
	return paginate[model.Domain](ctx, r, req, "domain_id", noScope)
}

// EditDomain replaces name and description of the domain with domain.DomainID.
func (r *Repository) EditDomain(ctx context.Context, domain *model.Domain) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := domainExists(tx, domain.DomainID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("domain", domain.DomainID)
		}
		taken, err := domainNameTaken(tx, domain.Domain, domain.DomainID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Duplicate("Domain name already exists")
		}
		return tx.Model(&model.Domain{}).
			Where("domain_id = ?", domain.DomainID).
			Updates(map[string]interface{}{
				"domain":             domain.Domain,
				"domain_description": domain.DomainDescription,
			}).Error
	})
}

func (r *Repository) DeleteDomain(ctx context.Context, domainID int) error {
	return r.transaction(ctx, func(tx *gorm.DB) error {
		ok, err := domainExists(tx, domainID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("domain", domainID)
		}
		referenced, err := domainReferenced(tx, domainID)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Referential("Unable to delete domain resource: domain id is associated to 1 or more courses")
		}
		return tx.Where("domain_id = ?", domainID).Delete(&model.Domain{}).Error
	})
}

// DomainOfCourse returns the domain the course belongs to.
func (r *Repository) DomainOfCourse(ctx context.Context, courseID string) (*model.Domain, error) {
	var domain model.Domain
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Joins("JOIN courses ON courses.domain_id = domains.domain_id").
			Where("courses.course_id = ?", courseID).
			Select("domains.*").
			Take(&domain).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("course", courseID)
	}
	if err != nil {
		return nil, err
	}
	return &domain, nil
}
