package model

// Term is an academic period identified by a caller-assigned number.
type Term struct {
	TermID   int    `gorm:"column:term_id;primaryKey;autoIncrement:false" json:"term_id" validate:"gte=1"`
	TermName string `gorm:"column:term_name;type:varchar(30);not null" json:"term_name" validate:"required,max=30"`

	// Relationships
	Courses []Course `gorm:"foreignKey:TermID;references:TermID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

// TableName specifies the table name for Term
func (Term) TableName() string {
	return "terms"
}

// DefaultTermName is "Fall" for odd ids and "Winter" for even ones.
func DefaultTermName(termID int) string {
	if termID%2 == 0 {
		return "Winter"
	}
	return "Fall"
}

// NewTerm builds a term carrying its default name.
func NewTerm(termID int) (*Term, error) {
	return NewNamedTerm(termID, DefaultTermName(termID))
}

// NewNamedTerm builds a term with an explicit name.
func NewNamedTerm(termID int, name string) (*Term, error) {
	t := &Term{TermID: termID, TermName: name}
	if err := check(t); err != nil {
		return nil, err
	}
	return t, nil
}

// TermFromRecord decodes a term. term_name may be omitted, in which case
// the default name applies.
func TermFromRecord(rec Record) (*Term, error) {
	id, err := recordInt(rec, "term_id")
	if err != nil {
		return nil, malformed("term", err)
	}
	name, ok, err := optionalString(rec, "term_name")
	if err != nil {
		return nil, malformed("term", err)
	}
	if !ok {
		name = DefaultTermName(id)
	}
	t, err := NewNamedTerm(id, name)
	if err != nil {
		return nil, malformed("term", err)
	}
	return t, nil
}

func (t Term) ToRecord() Record {
	return Record{
		"term_id":   t.TermID,
		"term_name": t.TermName,
	}
}
