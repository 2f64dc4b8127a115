package models

import "time"

// WeeklyReport is a generated summary of one school week
type WeeklyReport struct {
	ID        string    `json:"id"`
	Week      int       `json:"week"`
	Content   string    `json:"content"`
	Model     string    `json:"model"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
