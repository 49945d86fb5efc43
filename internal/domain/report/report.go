package report

import "time"

// Summary is the single aggregate behind the admin dashboard, the JSON
// endpoint and the CSV export. Produced in one place so the renderers
// cannot drift apart.
type Summary struct {
	GeneratedAt  time.Time      `json:"generatedAt"`
	StatusCounts StatusCounts   `json:"statusCounts"`
	Monthly      []MonthlyBucket `json:"monthly"`
	TopVenues    []VenueCount   `json:"topVenues"`
	KPIs         KPIs           `json:"kpis"`
	Events       []EventRatio   `json:"events"` // approved events, capped
}

type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type MonthlyBucket struct {
	Month         string `json:"month"` // "2026-08"
	Events        int    `json:"events"`
	Capacity      int    `json:"capacity"`
	Registrations int    `json:"registrations"`
}

type VenueCount struct {
	Venue  string `json:"venue"`
	Events int    `json:"events"`
}

type KPIs struct {
	Events        int     `json:"events"`
	Approved      int     `json:"approved"`
	Capacity      int     `json:"capacity"`
	Registrations int     `json:"regs"`
	FeeRevenue    float64 `json:"feeRevenue"` // fee * registrations over approved events
}

type EventRatio struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Venue         string  `json:"venue"`
	Date          string  `json:"date"`
	Capacity      int     `json:"capacity"`
	Registrations int     `json:"registrations"`
	FillRatio     float64 `json:"fillRatio"`
}

// MaxEventRows caps the per-event breakdown in the aggregate.
const MaxEventRows = 50

type Filter struct {
	From   *time.Time
	To     *time.Time
	Status *string
}
