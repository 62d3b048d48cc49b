package models

// City is a catalog row, created lazily the first time a municipality is
// referenced and never deleted. Coordinates are decimal degrees.
type City struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	StateName  string  `json:"stateName"`
	StateCode  string  `json:"stateCode"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int     `json:"population"`
}

// CitySummary is the nested shape embedded in run and profile responses.
type CitySummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StateName string `json:"stateName"`
	StateCode string `json:"stateCode"`
}

// Summary converts a full city row to its embedded form.
func (c *City) Summary() *CitySummary {
	return &CitySummary{ID: c.ID, Name: c.Name, StateName: c.StateName, StateCode: c.StateCode}
}
