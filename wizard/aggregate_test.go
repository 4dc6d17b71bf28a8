package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeStep_Shallow(t *testing.T) {
	profile := map[string]any{
		"email":     "a@b.com",
		"firstName": "Old",
		"address":   map[string]any{"city": "Pune", "state": "MH"},
	}
	patch := map[string]any{
		"firstName": "New",
		"address":   map[string]any{"city": "Mumbai"},
	}

	merged := MergeStep(profile, patch, 2, ProfileSteps)

	assert.Equal(t, "a@b.com", merged["email"])
	assert.Equal(t, "New", merged["firstName"])
	// nested objects are replaced, not deep merged
	assert.Equal(t, map[string]any{"city": "Mumbai"}, merged["address"])
	assert.Equal(t, 22.22, merged["profileCompletion"])
	// input untouched
	assert.Equal(t, "Old", profile["firstName"])
	assert.NotContains(t, profile, "profileCompletion")
}

func TestCompletion(t *testing.T) {
	assert.Equal(t, 0.0, Completion(0, 10))
	assert.Equal(t, 11.11, Completion(1, 10))
	assert.Equal(t, 100.0, Completion(9, 10))
	assert.Equal(t, 100.0, Completion(10, 10))
	assert.Equal(t, 0.0, Completion(-3, 10))
	assert.Equal(t, 100.0, Completion(1, 1))
}
