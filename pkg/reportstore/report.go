// Package reportstore holds the client-local cache of incident reports.
//
// A Store owns the in-memory report list for one session, exposes snapshot
// reads plus a publish-subscribe change feed, and synchronizes with the
// persistence and identity services on demand. It is the single data-access
// layer every report-consuming surface (forms, lists, dashboards) goes
// through.
package reportstore

import (
	"strings"
	"time"
)

// Status is the triage state of a report. Transitions happen through the
// authority workflow on the server side; clients only ever create reports in
// StatusPending.
type Status string

const (
	StatusPending       Status = "pending"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusResolved:
		return true
	}
	return false
}

// Severity is the reporter-supplied impact estimate.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Report is a stored incident report enriched with the reporter's display
// name. ID and Timestamp are assigned by the persistence service and never
// change afterwards.
type Report struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Status      Status    `json:"status"`
	Severity    Severity  `json:"severity"`
}

// Draft is a not-yet-persisted candidate report supplied by a caller. Status
// and Severity may be left empty; defaults are applied before submission.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Severity    Severity `json:"severity,omitempty"`
}

func (d Draft) withDefaults() Draft {
	if d.Status == "" {
		d.Status = StatusPending
	}
	if d.Severity == "" {
		d.Severity = SeverityMedium
	}
	return d
}

// Row is a stored report as returned by the persistence service, before the
// profile join.
type Row struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Status      Status    `json:"status"`
	Severity    Severity  `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      string    `json:"user_id"`
}

func (r Row) toReport(userName string) Report {
	return Report{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Timestamp:   r.CreatedAt,
		UserID:      r.UserID,
		UserName:    userName,
		PhotoURL:    r.PhotoURL,
		Status:      r.Status,
		Severity:    r.Severity,
	}
}

// Profile is the subset of a user profile needed for the reporter name join.
type Profile struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// UnknownUserName is shown when neither a profile nor an email identifies the
// reporter.
const UnknownUserName = "Unknown User"

// displayName resolves the reporter name: "first last" trimmed, then the
// profile email, then the fallback email, then the fixed placeholder.
func displayName(p *Profile, fallbackEmail string) string {
	if p != nil {
		if name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName)); name != "" {
			return name
		}
		if p.Email != "" {
			return p.Email
		}
	}
	if fallbackEmail != "" {
		return fallbackEmail
	}
	return UnknownUserName
}
