package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending       = "pending"
	StatusInvestigating = "investigating"
	StatusResolved      = "resolved"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Report is the stored incident report. The JSON field names match what the
// report store client expects; reporter_id is exposed as user_id.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Latitude    float64            `bson:"latitude" json:"latitude"`
	Longitude   float64            `bson:"longitude" json:"longitude"`
	PhotoURL    string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Severity    string             `bson:"severity" json:"severity"`
	ReporterID  string             `bson:"reporter_id" json:"user_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ReportEvent is published to the reports exchange when a report is created
// ("new_report") or triaged ("status_update").
type ReportEvent struct {
	Type       string    `json:"type"`
	ReportID   string    `json:"report_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Severity   string    `json:"severity"`
	ReporterID string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusResolved:
		return true
	}
	return false
}

func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
