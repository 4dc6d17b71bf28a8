package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nssc-portal/validators"
)

func TestNewSequencer_Resume(t *testing.T) {
	cases := map[string]int{"": 1, "4": 4, "10": 10, "11": 1, "0": 1, "-2": 1, "abc": 1, " 3 ": 3}
	for resume, want := range cases {
		s, err := NewSequencer(ProfileSteps, resume, false)
		require.NoError(t, err)
		assert.Equal(t, want, s.Current(), "resume=%q", resume)
	}
}

func TestNewSequencer_LockedRefusesEntry(t *testing.T) {
	s, err := NewSequencer(ProfileSteps, "3", true)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrProfileLocked)
}

func TestNewSequencer_InvalidTotal(t *testing.T) {
	_, err := NewSequencer(0, "", false)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestSequencer_AdvanceBlockedByValidation(t *testing.T) {
	s, _ := NewSequencer(ProfileSteps, "2", false)
	err := s.Advance(validators.FieldErrors{"address.pincode": "PIN code must be 6 digits!"})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 2, s.Current())

	require.NoError(t, s.Advance(validators.FieldErrors{}))
	assert.Equal(t, 3, s.Current())
	require.NoError(t, s.Advance(nil))
	assert.Equal(t, 4, s.Current())
}

func TestSequencer_FinalAndFirst(t *testing.T) {
	s, _ := NewSequencer(3, "3", false)
	assert.True(t, s.IsFinal())
	assert.ErrorIs(t, s.Advance(nil), ErrFinalStep)
	assert.Equal(t, 3, s.Current())

	require.NoError(t, s.Retreat())
	require.NoError(t, s.Retreat())
	assert.ErrorIs(t, s.Retreat(), ErrFirstStep)
	assert.Equal(t, 1, s.Current())
}

func TestSequencer_Location(t *testing.T) {
	s, _ := NewSequencer(ProfileSteps, "5", false)
	assert.Equal(t, "/candidate/profile?step=5", s.Location("/candidate/profile"))
}

func TestStepNames(t *testing.T) {
	names := StepNames()
	assert.Len(t, names, ProfileSteps)
	assert.Equal(t, "Work Experience", StepWorkExperience.String())
	assert.Equal(t, "Lock", names[ProfileSteps-1])
	assert.Equal(t, "Step(11)", ProfileStep(11).String())
}
