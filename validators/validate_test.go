package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type entry struct {
	Examination string `json:"examination" validate:"required,oneof=SSC HSC 'Master Degree'"`
	Pincode     string `json:"pincode" validate:"required,pincode"`
}

type form struct {
	Mobile   string  `json:"primaryMobile" validate:"required,mobile"`
	Password string  `json:"password" validate:"required,password"`
	IFSC     string  `json:"ifsc" validate:"omitempty,ifsc"`
	Entries  []entry `json:"qualifications" validate:"dive"`
}

func TestStruct_Valid(t *testing.T) {
	errs := Struct(form{
		Mobile:   "9876543210",
		Password: "Secret@123",
		IFSC:     "SBIN0001234",
		Entries:  []entry{{Examination: "Master Degree", Pincode: "411001"}},
	})
	assert.True(t, errs.OK())
}

func TestStruct_FieldPaths(t *testing.T) {
	errs := Struct(form{
		Mobile:   "12345",
		Password: "weak",
		IFSC:     "SBIN1001234",
		Entries:  []entry{{Examination: "PhD", Pincode: "4110"}},
	})

	assert.Equal(t, "Invalid mobile number!", errs["primaryMobile"])
	assert.Contains(t, errs, "password")
	assert.Equal(t, "Invalid IFSC code!", errs["ifsc"])
	assert.Equal(t, "Examination must be one of: SSC HSC Master Degree!", errs["qualifications[0].examination"])
	assert.Equal(t, "PIN code must be 6 digits!", errs["qualifications[0].pincode"])
}

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Secret@123":       true,
		"secret@123":       false, // no uppercase
		"SECRET@123":       false, // no lowercase
		"Secret@abc":       false, // no digit
		"Secret1234":       false, // no special
		"Se@1":             false, // too short
		"Secret@123456789": false, // 16 chars
		"Secret#123":       false, // '#' not allowed
	}
	for pw, want := range cases {
		assert.Equal(t, want, IsStrongPassword(pw), pw)
	}
}

func TestVar(t *testing.T) {
	assert.True(t, Var("email", "a@b.com", "required,email").OK())
	assert.Equal(t, "Invalid email!", Var("email", "nope", "required,email")["email"])
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Board university", label("boardUniversity"))
	assert.Equal(t, "Ifsc", label("ifsc"))
}
