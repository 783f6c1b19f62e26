package database

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

//go:embed seed/catalog.yaml
var defaultCatalog []byte

// SeedCatalog is the YAML shape of a seed file. Courses name their domain
// and links name their element by competency and element name, so the
// file never carries store-assigned ids.
type SeedCatalog struct {
	Terms []struct {
		TermID   int    `yaml:"term_id"`
		TermName string `yaml:"term_name"`
	} `yaml:"terms"`
	Domains []struct {
		Domain      string `yaml:"domain"`
		Description string `yaml:"domain_description"`
	} `yaml:"domains"`
	Competencies []struct {
		CompetencyID string `yaml:"competency_id"`
		Competency   string `yaml:"competency"`
		Achievement  string `yaml:"competency_achievement"`
		Type         string `yaml:"competency_type"`
		Elements     []struct {
			Order    int    `yaml:"element_order"`
			Element  string `yaml:"element"`
			Criteria string `yaml:"element_criteria"`
		} `yaml:"elements"`
	} `yaml:"competencies"`
	Courses []struct {
		CourseID    string `yaml:"course_id"`
		Title       string `yaml:"course_title"`
		TheoryHours int    `yaml:"theory_hours"`
		LabHours    int    `yaml:"lab_hours"`
		WorkHours   int    `yaml:"work_hours"`
		Description string `yaml:"description"`
		Domain      string `yaml:"domain"`
		TermID      int    `yaml:"term_id"`
		Elements    []struct {
			CompetencyID string `yaml:"competency_id"`
			Element      string `yaml:"element"`
			Hours        int    `yaml:"element_hours"`
		} `yaml:"elements"`
	} `yaml:"courses"`
}

// ParseSeed decodes a seed file; an empty path selects the embedded catalog.
func ParseSeed(path string) (*SeedCatalog, error) {
	raw := defaultCatalog
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read seed file")
		}
		raw = data
	}
	var catalog SeedCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, errors.Wrap(err, "parse seed file")
	}
	return &catalog, nil
}

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.Nop()
	}
	return &Seeder{db: db, log: log}
}

// SeedStats counts the rows a seed run inserted.
type SeedStats struct {
	Terms, Domains, Competencies, Elements, Courses, Links int64
}

// SeedCatalog inserts the catalog in one transaction. Rows whose key
// already exists are left untouched, so seeding twice is harmless.
func (s *Seeder) SeedCatalog(catalog *SeedCatalog) (*SeedStats, error) {
	stats := &SeedStats{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		skip := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{})

		for _, t := range catalog.Terms {
			name := t.TermName
			if name == "" {
				name = model.DefaultTermName(t.TermID)
			}
			term, err := model.NewNamedTerm(t.TermID, name)
			if err != nil {
				return errors.Wrapf(err, "term %d", t.TermID)
			}
			res := skip.Create(term)
			if res.Error != nil {
				return res.Error
			}
			stats.Terms += res.RowsAffected
		}

		domainIDs := map[string]int{}
		for _, d := range catalog.Domains {
			domain, err := model.NewDomain(d.Domain, d.Description)
			if err != nil {
				return errors.Wrapf(err, "domain %q", d.Domain)
			}
			var existing model.Domain
			err = tx.Where("domain = ?", domain.Domain).Take(&existing).Error
			switch {
			case err == nil:
				domain.DomainID = existing.DomainID
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(domain).Error; err != nil {
					return err
				}
				stats.Domains++
			default:
				return err
			}
			domainIDs[domain.Domain] = domain.DomainID
		}

		elementIDs := map[[2]string]int{}
		for _, c := range catalog.Competencies {
			competency, err := model.NewCompetency(c.CompetencyID, c.Competency, c.Achievement, c.Type)
			if err != nil {
				return errors.Wrapf(err, "competency %s", c.CompetencyID)
			}
			res := skip.Create(competency)
			if res.Error != nil {
				return res.Error
			}
			stats.Competencies += res.RowsAffected

			for _, e := range c.Elements {
				element, err := model.NewElement(e.Order, e.Element, e.Criteria, c.CompetencyID)
				if err != nil {
					return errors.Wrapf(err, "element %q of %s", e.Element, c.CompetencyID)
				}
				var existing model.Element
				err = tx.Where("competency_id = ? AND element = ?", element.CompetencyID, element.Element).Take(&existing).Error
				switch {
				case err == nil:
					element.ElementID = existing.ElementID
				case errors.Is(err, gorm.ErrRecordNotFound):
					if err := tx.Omit(clause.Associations).Create(element).Error; err != nil {
						return err
					}
					stats.Elements++
				default:
					return err
				}
				elementIDs[[2]string{element.CompetencyID, element.Element}] = element.ElementID
			}
		}

		for _, c := range catalog.Courses {
			domainID, ok := domainIDs[c.Domain]
			if !ok {
				return errors.Errorf("course %s: unknown domain %q", c.CourseID, c.Domain)
			}
			course, err := model.NewCourse(c.CourseID, c.Title, c.TheoryHours, c.LabHours, c.WorkHours,
				c.Description, domainID, c.TermID)
			if err != nil {
				return errors.Wrapf(err, "course %s", c.CourseID)
			}
			res := skip.Create(course)
			if res.Error != nil {
				return res.Error
			}
			stats.Courses += res.RowsAffected

			for _, l := range c.Elements {
				elementID, ok := elementIDs[[2]string{l.CompetencyID, l.Element}]
				if !ok {
					return errors.Errorf("course %s: unknown element %q of %s", c.CourseID, l.Element, l.CompetencyID)
				}
				link, err := model.NewCourseElement(c.CourseID, elementID, l.Hours)
				if err != nil {
					return errors.Wrapf(err, "link %s/%d", c.CourseID, elementID)
				}
				res := skip.Create(link)
				if res.Error != nil {
					return res.Error
				}
				stats.Links += res.RowsAffected
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("catalog seeded",
		"terms", stats.Terms, "domains", stats.Domains, "competencies", stats.Competencies,
		"elements", stats.Elements, "courses", stats.Courses, "links", stats.Links)
	return stats, nil
}

// SeedAdminUser creates a ServerAdmin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when no account with that email exists yet.
func (s *Seeder) SeedAdminUser() error {
	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		s.log.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	var count int64
	if err := s.db.Model(&model.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("admin user already exists, skipping", "email", adminEmail)
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	admin, err := model.NewUser("System Administrator", adminEmail, passwordHash, model.GroupServerAdmin)
	if err != nil {
		return err
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}
	s.log.Info("created admin user", "email", admin.Email)
	return nil
}

// RunSeeds seeds the admin account and the catalog at path (the embedded
// catalog when path is empty).
func RunSeeds(db *gorm.DB, path string, log *logger.Logger) (*SeedStats, error) {
	catalog, err := ParseSeed(path)
	if err != nil {
		return nil, err
	}
	seeder := NewSeeder(db, log)
	if err := seeder.SeedAdminUser(); err != nil {
		return nil, errors.Wrap(err, "seed admin user")
	}
	return seeder.SeedCatalog(catalog)
}
