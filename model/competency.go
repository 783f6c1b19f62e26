package model

import "github.com/sahilchouksey/course-catalog/utils/apperr"

const (
	CompetencyMandatory = "Mandatory"
	CompetencyOptional  = "Optional"
)

// Competency is a learning outcome identified by a four character code.
type Competency struct {
	CompetencyID          string `gorm:"column:competency_id;primaryKey;type:char(4)" json:"competency_id" validate:"len=4"`
	Competency            string `gorm:"column:competency;type:varchar(250);not null" json:"competency" validate:"required,max=250"`
	CompetencyAchievement string `gorm:"column:competency_achievement;type:text;not null" json:"competency_achievement" validate:"required"`
	CompetencyType        string `gorm:"column:competency_type;type:varchar(10);not null" json:"competency_type" validate:"oneof=Mandatory Optional"`

	// Relationships
	Elements []Element `gorm:"foreignKey:CompetencyID;references:CompetencyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

// TableName specifies the table name for Competency
func (Competency) TableName() string {
	return "competencies"
}

func NewCompetency(competencyID, statement, achievement, competencyType string) (*Competency, error) {
	c := &Competency{
		CompetencyID:          competencyID,
		Competency:            statement,
		CompetencyAchievement: achievement,
		CompetencyType:        competencyType,
	}
	if err := check(c); err != nil {
		return nil, err
	}
	return c, nil
}

func competencyFields(rec Record) (*Competency, error) {
	id, e1 := recordString(rec, "competency_id")
	statement, e2 := recordString(rec, "competency")
	achievement, e3 := recordString(rec, "competency_achievement")
	kind, e4 := recordString(rec, "competency_type")
	if err := firstErr(e1, e2, e3, e4); err != nil {
		return nil, err
	}
	return NewCompetency(id, statement, achievement, kind)
}

// CompetencyFromUpdateRecord decodes the competency keys only. It is used
// when an existing competency is edited.
func CompetencyFromUpdateRecord(rec Record) (*Competency, error) {
	c, err := competencyFields(rec)
	if err != nil {
		return nil, malformed("competency", err)
	}
	return c, nil
}

func (c Competency) ToRecord() Record {
	return Record{
		"competency_id":          c.CompetencyID,
		"competency":             c.Competency,
		"competency_achievement": c.CompetencyAchievement,
		"competency_type":        c.CompetencyType,
	}
}

// CompetencyWithElement is a competency together with its first element.
type CompetencyWithElement struct {
	Competency *Competency
	Element    *Element
}

// CompetencyWithElementFromRecord decodes both halves of a combined record.
// Nothing is returned unless both halves are valid.
func CompetencyWithElementFromRecord(rec Record) (*CompetencyWithElement, error) {
	const kind = "competency and element"

	order, e1 := recordInt(rec, "element_order")
	name, e2 := recordString(rec, "element")
	criteria, e3 := recordString(rec, "element_criteria")
	owner, e4 := recordString(rec, "element_competency_id")
	if err := firstErr(e1, e2, e3, e4); err != nil {
		return nil, malformed(kind, err)
	}
	element, err := NewElement(order, name, criteria, owner)
	if err != nil {
		return nil, malformed(kind, err)
	}
	competency, err := competencyFields(rec)
	if err != nil {
		return nil, malformed(kind, err)
	}
	return &CompetencyWithElement{Competency: competency, Element: element}, nil
}

// Validate reports an element that claims a different owning competency.
func (cw CompetencyWithElement) Validate() error {
	if cw.Competency == nil || cw.Element == nil {
		return apperr.NewValidationError("competency", "competency and element are both required")
	}
	if cw.Element.CompetencyID != cw.Competency.CompetencyID {
		return apperr.NewValidationError("element_competency_id", "Competency and Element competency ids do not match")
	}
	return nil
}

func (cw CompetencyWithElement) ToRecord() Record {
	rec := cw.Competency.ToRecord()
	rec["element_order"] = cw.Element.ElementOrder
	rec["element"] = cw.Element.Element
	rec["element_criteria"] = cw.Element.ElementCriteria
	rec["element_competency_id"] = cw.Element.CompetencyID
	return rec
}
