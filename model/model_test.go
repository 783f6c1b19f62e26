package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
)

func TestDefaultTermName(t *testing.T) {
	assert.Equal(t, "Fall", DefaultTermName(1))
	assert.Equal(t, "Winter", DefaultTermName(2))
	assert.Equal(t, "Fall", DefaultTermName(7))
}

func TestNewTermRejectsNonPositiveID(t *testing.T) {
	_, err := NewTerm(0)
	require.Error(t, err)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "term_id")
}

func TestTermFromRecordDefaultsName(t *testing.T) {
	term, err := TermFromRecord(Record{"term_id": float64(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, term.TermID)
	assert.Equal(t, "Winter", term.TermName)
}

func TestFromRecordRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name   string
		decode func() error
	}{
		{"term id as string", func() error {
			_, err := TermFromRecord(Record{"term_id": "1"})
			return err
		}},
		{"fractional term id", func() error {
			_, err := TermFromRecord(Record{"term_id": 1.5})
			return err
		}},
		{"domain missing description", func() error {
			_, err := DomainFromRecord(Record{"domain": "Programming"})
			return err
		}},
		{"course negative hours", func() error {
			_, err := CourseFromRecord(Record{
				"course_id": "420-150-DW", "course_title": "Intro", "theory_hours": float64(-1),
				"lab_hours": float64(3), "work_hours": float64(3), "description": "d",
				"domain_id": float64(1), "term_id": float64(1),
			})
			return err
		}},
		{"competency id too long", func() error {
			_, err := CompetencyFromUpdateRecord(Record{
				"competency_id": "00Z6X", "competency": "c", "competency_achievement": "a",
				"competency_type": CompetencyMandatory,
			})
			return err
		}},
		{"competency bad type", func() error {
			_, err := CompetencyFromUpdateRecord(Record{
				"competency_id": "00Z6", "competency": "c", "competency_achievement": "a",
				"competency_type": "Sometimes",
			})
			return err
		}},
		{"element order zero", func() error {
			_, err := ElementFromRecord(Record{
				"element_order": float64(0), "element": "e", "element_criteria": "c", "competency_id": "00Z6",
			})
			return err
		}},
		{"link missing hours", func() error {
			_, err := CourseElementFromRecord("420-150-DW", Record{"element_id": float64(1)})
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.decode()
			require.Error(t, err)
			var merr *apperr.MalformedInputError
			assert.True(t, errors.As(err, &merr), "expected MalformedInputError, got %T", err)
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	term := Record{"term_id": 3, "term_name": "Fall"}
	domain := Record{"domain_id": 2, "domain": "Programming", "domain_description": "Writing software"}
	course := Record{
		"course_id": "420-150-DW", "course_title": "Intro to Programming", "theory_hours": 3,
		"lab_hours": 3, "work_hours": 3, "description": "First course", "domain_id": 1, "term_id": 1,
	}
	competency := Record{
		"competency_id": "00Z6", "competency": "Solve problems", "competency_achievement": "In a lab",
		"competency_type": CompetencyMandatory,
	}
	element := Record{
		"element_id": 5, "element_order": 1, "element": "Solve Any Programming Problem",
		"element_criteria": "Correct output", "competency_id": "00Z6",
	}
	link := Record{"course_id": "420-150-DW", "element_id": 5, "element_hours": 12}

	tm, err := TermFromRecord(term)
	require.NoError(t, err)
	assert.Equal(t, term, tm.ToRecord())

	d, err := DomainFromRecord(domain)
	require.NoError(t, err)
	assert.Equal(t, domain, d.ToRecord())

	c, err := CourseFromRecord(course)
	require.NoError(t, err)
	assert.Equal(t, course, c.ToRecord())

	cp, err := CompetencyFromUpdateRecord(competency)
	require.NoError(t, err)
	assert.Equal(t, competency, cp.ToRecord())

	e, err := ElementFromRecord(element)
	require.NoError(t, err)
	assert.Equal(t, element, e.ToRecord())

	ce, err := CourseElementFromRecord("", link)
	require.NoError(t, err)
	assert.Equal(t, link, ce.ToRecord())
}

func TestRecordRoundTripWithoutAssignedID(t *testing.T) {
	domain := Record{"domain": "Programming", "domain_description": "Writing software"}
	element := Record{
		"element_order": 1, "element": "Solve Any Programming Problem",
		"element_criteria": "Correct output", "competency_id": "00Z6",
	}

	d, err := DomainFromRecord(domain)
	require.NoError(t, err)
	assert.Equal(t, domain, d.ToRecord())
	assert.NotContains(t, d.ToRecord(), "domain_id")

	e, err := ElementFromRecord(element)
	require.NoError(t, err)
	assert.Equal(t, element, e.ToRecord())
	assert.NotContains(t, e.ToRecord(), "element_id")
}

func TestCompetencyWithElementFromRecordIsAtomic(t *testing.T) {
	rec := Record{
		"competency_id": "00Z6", "competency": "Solve problems", "competency_achievement": "In a lab",
		"competency_type": CompetencyMandatory,
		"element_order": float64(1), "element": "Solve Any Programming Problem",
		"element_criteria": "Correct output", "element_competency_id": "00Z6",
	}

	cw, err := CompetencyWithElementFromRecord(rec)
	require.NoError(t, err)
	require.NoError(t, cw.Validate())
	assert.Equal(t, "00Z6", cw.Competency.CompetencyID)
	assert.Equal(t, "Solve Any Programming Problem", cw.Element.Element)

	// a valid element half must not survive an invalid competency half
	rec["competency_type"] = "Never"
	cw, err = CompetencyWithElementFromRecord(rec)
	require.Error(t, err)
	assert.Nil(t, cw)

	rec["competency_type"] = CompetencyMandatory
	delete(rec, "element_criteria")
	cw, err = CompetencyWithElementFromRecord(rec)
	require.Error(t, err)
	assert.Nil(t, cw)
}

func TestCompetencyWithElementMismatch(t *testing.T) {
	cw, err := CompetencyWithElementFromRecord(Record{
		"competency_id": "00Z6", "competency": "Solve problems", "competency_achievement": "In a lab",
		"competency_type": CompetencyOptional,
		"element_order": float64(1), "element": "e", "element_criteria": "c", "element_competency_id": "00Z7",
	})
	require.NoError(t, err)

	err = cw.Validate()
	require.Error(t, err)
	assert.Equal(t, "Competency and Element competency ids do not match", err.Error())
}

func TestParseGroup(t *testing.T) {
	for input, want := range map[string]Group{
		"member":       GroupMember,
		"Admin":        GroupAdmin,
		"Server Admin": GroupServerAdmin,
		"3":            GroupServerAdmin,
	} {
		got, err := ParseGroup(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseGroup("root")
	assert.Error(t, err)
	_, err = ParseGroup("4")
	assert.Error(t, err)
}
