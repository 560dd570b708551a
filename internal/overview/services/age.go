package services

import (
	"time"

	"github.com/c14220110/hospital-dashboard/internal/overview/models"
)

// Age is the number of full years between dob and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// AgeBucket places a birth date in exactly one age group. A nil date is
// Unknown.
func AgeBucket(dob *time.Time, now time.Time) string {
	if dob == nil {
		return models.AgeUnknown
	}
	switch age := Age(*dob, now); {
	case age < 18:
		return models.AgeUnder18
	case age <= 30:
		return models.Age18To30
	case age <= 50:
		return models.Age31To50
	case age <= 65:
		return models.Age51To65
	default:
		return models.AgeOver65
	}
}
