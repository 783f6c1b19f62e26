package model

// Element is a performance element of a competency. Its name is unique
// within the owning competency only.
type Element struct {
	ElementID       int    `gorm:"column:element_id;primaryKey;autoIncrement" json:"element_id"`
	ElementOrder    int    `gorm:"column:element_order;not null" json:"element_order" validate:"gte=1"`
	Element         string `gorm:"column:element;type:varchar(250);not null;uniqueIndex:idx_elements_competency_element,priority:2" json:"element" validate:"required,max=250"`
	ElementCriteria string `gorm:"column:element_criteria;type:text;not null" json:"element_criteria" validate:"required"`
	CompetencyID    string `gorm:"column:competency_id;type:char(4);not null;uniqueIndex:idx_elements_competency_element,priority:1" json:"competency_id" validate:"len=4"`

	// Relationships
	Links []CourseElement `gorm:"foreignKey:ElementID;references:ElementID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

// TableName specifies the table name for Element
func (Element) TableName() string {
	return "elements"
}

func NewElement(order int, name, criteria, competencyID string) (*Element, error) {
	e := &Element{
		ElementOrder:    order,
		Element:         name,
		ElementCriteria: criteria,
		CompetencyID:    competencyID,
	}
	if err := check(e); err != nil {
		return nil, err
	}
	return e, nil
}

// ElementFromRecord decodes an element; element_id is optional.
func ElementFromRecord(rec Record) (*Element, error) {
	order, e1 := recordInt(rec, "element_order")
	name, e2 := recordString(rec, "element")
	criteria, e3 := recordString(rec, "element_criteria")
	owner, e4 := recordString(rec, "competency_id")
	id, _, e5 := optionalInt(rec, "element_id")
	if err := firstErr(e1, e2, e3, e4, e5); err != nil {
		return nil, malformed("element", err)
	}
	e, err := NewElement(order, name, criteria, owner)
	if err != nil {
		return nil, malformed("element", err)
	}
	e.ElementID = id
	return e, nil
}

// ToRecord omits element_id until the store has assigned one.
func (e Element) ToRecord() Record {
	rec := Record{
		"element_order":    e.ElementOrder,
		"element":          e.Element,
		"element_criteria": e.ElementCriteria,
		"competency_id":    e.CompetencyID,
	}
	if e.ElementID != 0 {
		rec["element_id"] = e.ElementID
	}
	return rec
}

// CourseElement links a course to an element with an hour allocation.
type CourseElement struct {
	CourseID     string `gorm:"column:course_id;primaryKey;type:varchar(20)" json:"course_id" validate:"required"`
	ElementID    int    `gorm:"column:element_id;primaryKey;autoIncrement:false;index" json:"element_id" validate:"gte=1"`
	ElementHours int    `gorm:"column:element_hours;not null" json:"element_hours" validate:"gte=0"`
}

// TableName specifies the table name for CourseElement
func (CourseElement) TableName() string {
	return "courses_elements"
}

func NewCourseElement(courseID string, elementID, hours int) (*CourseElement, error) {
	ce := &CourseElement{CourseID: courseID, ElementID: elementID, ElementHours: hours}
	if err := check(ce); err != nil {
		return nil, err
	}
	return ce, nil
}

// CourseElementFromRecord decodes a link. course_id may be supplied by the
// caller (taken from the URL), in which case the record need not carry it.
func CourseElementFromRecord(courseID string, rec Record) (*CourseElement, error) {
	if courseID == "" {
		id, err := recordString(rec, "course_id")
		if err != nil {
			return nil, malformed("course element", err)
		}
		courseID = id
	}
	elementID, e1 := recordInt(rec, "element_id")
	hours, e2 := recordInt(rec, "element_hours")
	if err := firstErr(e1, e2); err != nil {
		return nil, malformed("course element", err)
	}
	ce, err := NewCourseElement(courseID, elementID, hours)
	if err != nil {
		return nil, malformed("course element", err)
	}
	return ce, nil
}

func (ce CourseElement) ToRecord() Record {
	return Record{
		"course_id":     ce.CourseID,
		"element_id":    ce.ElementID,
		"element_hours": ce.ElementHours,
	}
}
