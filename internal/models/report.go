package models

// CycleReport summarises one recalculation pass.
type CycleReport struct {
	Trigger  string `json:"trigger"`
	Skipped  bool   `json:"skipped"` // bot inactive
	Waiting  int    `json:"waiting"`
	Due      int    `json:"due"`
	Notified int    `json:"notified"`
	Failed   int    `json:"failed"`
}
