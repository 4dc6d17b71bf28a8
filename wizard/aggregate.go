package wizard

import "math"

// MergeStep shallow-merges patch into profile: keys in patch replace the same keys,
// every other key is left alone. profileCompletion is recomputed from currentStep.
// The input map is not modified.
func MergeStep(profile, patch map[string]any, currentStep, totalSteps int) map[string]any {
	merged := make(map[string]any, len(profile)+len(patch)+1)
	for k, v := range profile {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	merged["profileCompletion"] = Completion(currentStep, totalSteps)
	return merged
}

// Completion is currentStep/(totalSteps-1) as a percentage, clamped to [0, 100].
func Completion(currentStep, totalSteps int) float64 {
	if totalSteps <= 1 {
		return 100
	}
	pct := float64(currentStep) / float64(totalSteps-1) * 100
	pct = math.Round(pct*100) / 100
	return math.Max(0, math.Min(100, pct))
}
