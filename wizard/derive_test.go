package wizard

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"nssc-portal/models"
)

func TestDeriveFields_Marks(t *testing.T) {
	d := DeriveFields(models.QualificationEntry{MarksSystem: "Marks", MarksObtained: "450", OutOfMarks: "500"})
	assert.Equal(t, "90.00", d.Percentage)
	assert.Equal(t, "First Class", d.ClassGrade)
}

func TestDeriveFields_MarksUndefined(t *testing.T) {
	for _, q := range []models.QualificationEntry{
		{MarksSystem: "Marks", MarksObtained: "450", OutOfMarks: "0"},
		{MarksSystem: "Marks", MarksObtained: "450", OutOfMarks: "-10"},
		{MarksSystem: "Marks", MarksObtained: "abc", OutOfMarks: "500"},
		{MarksSystem: "Marks", MarksObtained: "450", OutOfMarks: ""},
		{MarksSystem: "Marks", MarksObtained: "NaN", OutOfMarks: "500"},
	} {
		assert.Equal(t, Derived{}, DeriveFields(q), "%+v", q)
	}
}

func TestDeriveFields_CGPA(t *testing.T) {
	d := DeriveFields(models.QualificationEntry{MarksSystem: "CGPA", CGPA: "7.2"})
	assert.Equal(t, "68.40", d.Percentage)
	assert.Equal(t, "Second Class", d.ClassGrade)
}

func TestDeriveFields_GradeVerbatim(t *testing.T) {
	d := DeriveFields(models.QualificationEntry{MarksSystem: "Grade", Percentage: "55.5"})
	assert.Equal(t, "55.5", d.Percentage)
	assert.Equal(t, "Third Class", d.ClassGrade)

	d = DeriveFields(models.QualificationEntry{MarksSystem: "Grade", Percentage: "A+"})
	assert.Equal(t, "A+", d.Percentage)
	assert.Equal(t, "", d.ClassGrade)
}

func TestDeriveFields_SwitchingSystemRecomputes(t *testing.T) {
	q := models.QualificationEntry{MarksSystem: "Marks", MarksObtained: "300", OutOfMarks: "500", CGPA: "9"}
	q = ApplyDerived(q)
	assert.Equal(t, "60.00", q.Percentage)

	q.MarksSystem = "CGPA"
	q = ApplyDerived(q)
	assert.Equal(t, "85.50", q.Percentage)
	assert.Equal(t, "First Class", q.ClassGrade)
}

func TestDeriveFields_Idempotent(t *testing.T) {
	q := models.QualificationEntry{MarksSystem: "Marks", MarksObtained: "333", OutOfMarks: "999"}
	once := ApplyDerived(q)
	twice := ApplyDerived(once)
	assert.Equal(t, once, twice)
}

func TestDeriveFields_MarksProperty(t *testing.T) {
	for outOf := 1; outOf <= 200; outOf += 7 {
		for obtained := 0; obtained <= outOf; obtained += 3 {
			d := DeriveFields(models.QualificationEntry{
				MarksSystem:   "Marks",
				MarksObtained: fmt.Sprint(obtained),
				OutOfMarks:    fmt.Sprint(outOf),
			})
			want := float64(obtained) / float64(outOf) * 100
			assert.Equal(t, fmt.Sprintf("%.2f", want), d.Percentage)
			assert.InDelta(t, math.Round(want*100)/100, mustFloat(t, d.Percentage), 0.011)
		}
	}
}

func TestGradeFor_Boundaries(t *testing.T) {
	cases := map[string]string{
		"100":   "First Class",
		"80":    "First Class",
		"79.99": "Second Class",
		"60":    "Second Class",
		"59.99": "Third Class",
		"40":    "Third Class",
		"39.99": "Fail",
		"0":     "Fail",
		"":      "",
		"n/a":   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, GradeFor(in), in)
	}
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, ok := parseNumber(s)
	if !ok {
		t.Fatalf("not a number: %q", s)
	}
	return v
}
