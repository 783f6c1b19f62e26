package model

// Course is a catalog entry identified by its catalog code (e.g. "420-150-DW").
type Course struct {
	CourseID    string `gorm:"column:course_id;primaryKey;type:varchar(20)" json:"course_id" validate:"required,max=20"`
	CourseTitle string `gorm:"column:course_title;type:varchar(100);not null" json:"course_title" validate:"required,max=100"`
	TheoryHours int    `gorm:"column:theory_hours;not null" json:"theory_hours" validate:"gte=0"`
	LabHours    int    `gorm:"column:lab_hours;not null" json:"lab_hours" validate:"gte=0"`
	WorkHours   int    `gorm:"column:work_hours;not null" json:"work_hours" validate:"gte=0"`
	Description string `gorm:"column:description;type:text;not null" json:"description" validate:"required"`
	DomainID    int    `gorm:"column:domain_id;not null;index" json:"domain_id" validate:"gte=1"`
	TermID      int    `gorm:"column:term_id;not null;index" json:"term_id" validate:"gte=1"`

	// Relationships
	Links []CourseElement `gorm:"foreignKey:CourseID;references:CourseID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

func NewCourse(courseID, title string, theoryHours, labHours, workHours int, description string, domainID, termID int) (*Course, error) {
	c := &Course{
		CourseID:    courseID,
		CourseTitle: title,
		TheoryHours: theoryHours,
		LabHours:    labHours,
		WorkHours:   workHours,
		Description: description,
		DomainID:    domainID,
		TermID:      termID,
	}
	if err := check(c); err != nil {
		return nil, err
	}
	return c, nil
}

func CourseFromRecord(rec Record) (*Course, error) {
	id, e1 := recordString(rec, "course_id")
	title, e2 := recordString(rec, "course_title")
	theory, e3 := recordInt(rec, "theory_hours")
	lab, e4 := recordInt(rec, "lab_hours")
	work, e5 := recordInt(rec, "work_hours")
	desc, e6 := recordString(rec, "description")
	domainID, e7 := recordInt(rec, "domain_id")
	termID, e8 := recordInt(rec, "term_id")
	if err := firstErr(e1, e2, e3, e4, e5, e6, e7, e8); err != nil {
		return nil, malformed("course", err)
	}
	c, err := NewCourse(id, title, theory, lab, work, desc, domainID, termID)
	if err != nil {
		return nil, malformed("course", err)
	}
	return c, nil
}

func (c Course) ToRecord() Record {
	return Record{
		"course_id":    c.CourseID,
		"course_title": c.CourseTitle,
		"theory_hours": c.TheoryHours,
		"lab_hours":    c.LabHours,
		"work_hours":   c.WorkHours,
		"description":  c.Description,
		"domain_id":    c.DomainID,
		"term_id":      c.TermID,
	}
}
