package models

import "time"

// User is an account row. TotalKm, OriginCityID and CurrentCityID are the
// journey-progress fields owned by the run ledger; everything else belongs
// to the auth subsystem.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	TotalKm       float64
	OriginCityID  *string
	CurrentCityID *string
	CreatedAt     time.Time
}
