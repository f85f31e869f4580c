package services

import (
	"time"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
)

const adultAge = 18

// IsMinor reports whether the profile counts as a minor. A missing birthdate
// fails closed: no birthdate means minor.
func IsMinor(birthdate *time.Time, now time.Time) bool {
	if birthdate == nil {
		return true
	}
	age := now.Year() - birthdate.Year()
	// Birthday not reached yet this year
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		age--
	}
	return age < adultAge
}

// CanApply gates seekers on age and guardian consent. hasActiveGuardian must
// come from a live guardian_relationships existence query, not from the
// cached Profile.GuardianStatus flag, which can drift.
func CanApply(p *models.Profile, hasActiveGuardian bool, now time.Time) bool {
	return !IsMinor(p.Birthdate, now) || hasActiveGuardian
}
