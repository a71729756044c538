package domain

import "time"

// MetroAreaCounts is the read-mostly aggregate a database trigger maintains per
// metro area. This subsystem reads it for forecasting and receives its UPDATE
// events for cap alerting.
type MetroAreaCounts struct {
	MetroArea  string `json:"metro_area"`
	MakerCount int    `json:"maker_count"`
	TakerCount int    `json:"taker_count"`
	MakerCap   int    `json:"maker_cap"`
	TakerCap   int    `json:"taker_cap"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type AdminAlert struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	MetroArea string    `json:"metroArea"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
