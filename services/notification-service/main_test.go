package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldDeliverStatusUpdateToOwnerOnly(t *testing.T) {
	event := NotificationEvent{Type: "status_update", ReportID: "r-1", ReporterID: "u-1"}

	owner := &Client{UserID: "u-1", Role: "citizen"}
	other := &Client{UserID: "u-2", Role: "citizen"}
	admin := &Client{UserID: "u-3", Role: "admin"}

	assert.True(t, shouldDeliver(event, owner))
	assert.False(t, shouldDeliver(event, other))
	assert.False(t, shouldDeliver(event, admin))
}

func TestShouldDeliverNewReportToAuthoritiesOnly(t *testing.T) {
	event := NotificationEvent{Type: "new_report", ReportID: "r-1", ReporterID: "u-1"}

	citizen := &Client{UserID: "u-1", Role: "citizen"}
	authority := &Client{UserID: "u-4", Role: "authority"}
	admin := &Client{UserID: "u-5", Role: "admin"}

	assert.False(t, shouldDeliver(event, citizen))
	assert.True(t, shouldDeliver(event, authority))
	assert.True(t, shouldDeliver(event, admin))
}

func TestShouldDeliverIgnoresUnknownTypes(t *testing.T) {
	event := NotificationEvent{Type: "comment", ReporterID: "u-1"}
	assert.False(t, shouldDeliver(event, &Client{UserID: "u-1", Role: "admin"}))
}

func TestShouldDeliverStatusUpdateWithoutOwner(t *testing.T) {
	event := NotificationEvent{Type: "status_update"}
	assert.False(t, shouldDeliver(event, &Client{UserID: "", Role: "citizen"}))
}
