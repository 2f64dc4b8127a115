package models

// Class represents a homeroom class that is scored every school day
type Class struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade int    `json:"grade"` // 1-5
}
