package model

// Domain groups courses by subject matter. DomainID is assigned by the store.
type Domain struct {
	DomainID          int    `gorm:"column:domain_id;primaryKey;autoIncrement" json:"domain_id"`
	Domain            string `gorm:"column:domain;type:varchar(100);uniqueIndex;not null" json:"domain" validate:"required,max=100"`
	DomainDescription string `gorm:"column:domain_description;type:text;not null" json:"domain_description" validate:"required"`

	// Relationships
	Courses []Course `gorm:"foreignKey:DomainID;references:DomainID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

// TableName specifies the table name for Domain
func (Domain) TableName() string {
	return "domains"
}

func NewDomain(name, description string) (*Domain, error) {
	d := &Domain{Domain: name, DomainDescription: description}
	if err := check(d); err != nil {
		return nil, err
	}
	return d, nil
}

// DomainFromRecord decodes a domain; domain_id is optional.
func DomainFromRecord(rec Record) (*Domain, error) {
	name, errName := recordString(rec, "domain")
	desc, errDesc := recordString(rec, "domain_description")
	id, _, errID := optionalInt(rec, "domain_id")
	if err := firstErr(errName, errDesc, errID); err != nil {
		return nil, malformed("domain", err)
	}
	d, err := NewDomain(name, desc)
	if err != nil {
		return nil, malformed("domain", err)
	}
	d.DomainID = id
	return d, nil
}

// ToRecord omits domain_id until the store has assigned one.
func (d Domain) ToRecord() Record {
	rec := Record{
		"domain":             d.Domain,
		"domain_description": d.DomainDescription,
	}
	if d.DomainID != 0 {
		rec["domain_id"] = d.DomainID
	}
	return rec
}
