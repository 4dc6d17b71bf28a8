package wizard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"nssc-portal/models"
)

const (
	MarksSystemMarks = "Marks"
	MarksSystemGrade = "Grade"
	MarksSystemCGPA  = "CGPA"

	cgpaMultiplier = 9.5
)

// Derived holds the computed attributes of a qualification entry. Empty strings mean undefined.
type Derived struct {
	Percentage string `json:"percentage"`
	ClassGrade string `json:"classGrade"`
}

// DeriveFields computes percentage and class grade from the raw inputs of the
// selected marks system. It is pure: the same entry always yields the same result.
func DeriveFields(q models.QualificationEntry) Derived {
	var (
		pct float64
		ok  bool
	)
	switch q.MarksSystem {
	case MarksSystemMarks:
		obtained, okObtained := parseNumber(q.MarksObtained)
		outOf, okOutOf := parseNumber(q.OutOfMarks)
		if okObtained && okOutOf && outOf > 0 {
			pct, ok = obtained/outOf*100, true
		}
	case MarksSystemCGPA:
		if cgpa, okCGPA := parseNumber(q.CGPA); okCGPA {
			pct, ok = cgpa*cgpaMultiplier, true
		}
	case MarksSystemGrade:
		// entered by the candidate, kept verbatim
		return Derived{Percentage: q.Percentage, ClassGrade: GradeFor(q.Percentage)}
	}

	if !ok {
		return Derived{}
	}
	return Derived{
		Percentage: fmt.Sprintf("%.2f", pct),
		ClassGrade: gradeBand(pct),
	}
}

// ApplyDerived returns q with its derived attributes recomputed.
func ApplyDerived(q models.QualificationEntry) models.QualificationEntry {
	d := DeriveFields(q)
	q.Percentage = d.Percentage
	q.ClassGrade = d.ClassGrade
	return q
}

// GradeFor maps a percentage string to its class band, or "" when it is not numeric.
func GradeFor(percentage string) string {
	pct, ok := parseNumber(percentage)
	if !ok {
		return ""
	}
	return gradeBand(pct)
}

func gradeBand(pct float64) string {
	switch {
	case pct >= 80:
		return "First Class"
	case pct >= 60:
		return "Second Class"
	case pct >= 40:
		return "Third Class"
	default:
		return "Fail"
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
