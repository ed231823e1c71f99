package domain

import "time"

// EmergencyContact is the person to notify for a user.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// User is a patient profile. Authentication lives outside this service;
// the profile is kept here because classification consumes age, gender and
// medical history.
type User struct {
	ID             UserID
	Email          string
	FullName       string
	DateOfBirth    time.Time
	Gender         string
	MedicalHistory []string
	Allergies      []string
	Medications    []string

	EmergencyContact EmergencyContact

	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// AgeAt returns the user's age in whole years at the given time.
func (u *User) AgeAt(t time.Time) int {
	if u.DateOfBirth.IsZero() || t.Before(u.DateOfBirth) {
		return 0
	}
	age := t.Year() - u.DateOfBirth.Year()
	// Compare month/day rather than year-day, which shifts across leap years.
	if t.Month() < u.DateOfBirth.Month() ||
		(t.Month() == u.DateOfBirth.Month() && t.Day() < u.DateOfBirth.Day()) {
		age--
	}
	return age
}
