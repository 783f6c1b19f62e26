package repository

import (
	"gorm.io/gorm"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

// Referential pre-checks. Each runs inside the caller's transaction so the
// check and the write see the same snapshot.

func termExists(tx *gorm.DB, termID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM terms WHERE term_id = ?", termID)
}

func domainExists(tx *gorm.DB, domainID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM domains WHERE domain_id = ?", domainID)
}

func domainNameTaken(tx *gorm.DB, name string, exceptID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM domains WHERE domain = ? AND domain_id <> ?", name, exceptID)
}

func courseExists(tx *gorm.DB, courseID string) (bool, error) {
	return exists(tx, "SELECT 1 FROM courses WHERE course_id = ?", courseID)
}

func competencyExists(tx *gorm.DB, competencyID string) (bool, error) {
	return exists(tx, "SELECT 1 FROM competencies WHERE competency_id = ?", competencyID)
}

func elementExists(tx *gorm.DB, elementID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM elements WHERE element_id = ?", elementID)
}

func elementNameTaken(tx *gorm.DB, competencyID, name string, exceptID int) (bool, error) {
	return exists(tx,
		"SELECT 1 FROM elements WHERE competency_id = ? AND element = ? AND element_id <> ?",
		competencyID, name, exceptID)
}

func linkExists(tx *gorm.DB, courseID string, elementID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM courses_elements WHERE course_id = ? AND element_id = ?", courseID, elementID)
}

// requireCourseParents checks the term and domain a course points at.
func requireCourseParents(tx *gorm.DB, termID, domainID int) error {
	ok, err := termExists(tx, termID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Referential("Specified term id does not exist")
	}
	ok, err = domainExists(tx, domainID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Referential("Specified domain id does not exist")
	}
	return nil
}

// requireElementSlot checks the owning competency exists and that no other
// element of it carries the same name.
func requireElementSlot(tx *gorm.DB, competencyID, name string, exceptID int) error {
	ok, err := competencyExists(tx, competencyID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Referential("Specified competency id does not exist")
	}
	taken, err := elementNameTaken(tx, competencyID, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Duplicate("Element name already exists for the provided competency id.")
	}
	return nil
}

// requireLinkEnds checks both ends of a course/element link.
func requireLinkEnds(tx *gorm.DB, courseID string, elementID int) error {
	ok, err := courseExists(tx, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Referential("Specified course id does not exist")
	}
	ok, err = elementExists(tx, elementID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Referential("Specified element id does not exist")
	}
	return nil
}

func termReferenced(tx *gorm.DB, termID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM courses WHERE term_id = ?", termID)
}

func domainReferenced(tx *gorm.DB, domainID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM courses WHERE domain_id = ?", domainID)
}

func competencyReferenced(tx *gorm.DB, competencyID string) (bool, error) {
	return exists(tx, "SELECT 1 FROM elements WHERE competency_id = ?", competencyID)
}

func courseLinked(tx *gorm.DB, courseID string) (bool, error) {
	return exists(tx, "SELECT 1 FROM courses_elements WHERE course_id = ?", courseID)
}

func elementLinked(tx *gorm.DB, elementID int) (bool, error) {
	return exists(tx, "SELECT 1 FROM courses_elements WHERE element_id = ?", elementID)
}
