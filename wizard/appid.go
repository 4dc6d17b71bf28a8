package wizard

import (
	"fmt"
	"strings"
	"time"
)

const applicationIDPrefix = "202509C329110/CC"

// ApplicationID formats the identifier for a candidate's next application. The
// sequence is 1 + the candidate's existing application count, so it is only
// unique per candidate.
func ApplicationID(registrationYear string, existing int) string {
	yearPrefix := strings.SplitN(registrationYear, "-", 2)[0]
	return fmt.Sprintf("%s/%s/%02d", applicationIDPrefix, yearPrefix, existing+1)
}

// RegistrationYears lists the selectable sessions: this year and the next four, as "2025-26".
func RegistrationYears(today time.Time) []string {
	years := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		y := today.Year() + i
		years = append(years, fmt.Sprintf("%d-%02d", y, (y+1)%100))
	}
	return years
}

func ValidRegistrationYear(year string, today time.Time) bool {
	for _, y := range RegistrationYears(today) {
		if y == year {
			return true
		}
	}
	return false
}
