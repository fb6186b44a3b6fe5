// Package models provides data model definitions for the GreenSentinel core.
package models

// ReportType classifies an environmental incident.
type ReportType string

const (
	ReportTypeFire           ReportType = "fire"
	ReportTypeIllegalLogging ReportType = "illegal_logging"
	ReportTypePollution      ReportType = "pollution"
	ReportTypeDumping        ReportType = "dumping"
	ReportTypeOther          ReportType = "other"
)

// Report is an incident report as submitted by a citizen.
type Report struct {
	ID          string     `json:"id,omitempty"`
	Type        ReportType `json:"type"`
	Description string     `json:"description"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	PhotoID     string     `json:"photo_id,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   int64      `json:"created_at,omitempty"`
}

// ReportUpdate carries a partial update for an existing report.
type ReportUpdate struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}
