package models

import "time"

// Run is a single logged distance event. ReachedCityID is a snapshot of the
// city resolved when the run was registered; it is not re-derived later.
type Run struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Km            float64   `json:"km"`
	Date          time.Time `json:"date"`
	Note          *string   `json:"note"`
	ReachedCityID *string   `json:"reachedCityId"`
	CreatedAt     time.Time `json:"createdAt"`

	// ReachedCity is populated by the service layer for responses.
	ReachedCity *CitySummary `json:"reachedCity,omitempty"`
}
