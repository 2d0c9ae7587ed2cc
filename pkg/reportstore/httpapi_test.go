package reportstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, statusCode int, status, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func TestClientListReports(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/reports", r.URL.Path)
		writeEnvelope(w, http.StatusOK, "success", "Reports fetched successfully", []Row{
			{ID: "r-1", Title: "Spill", Latitude: 25.0, Longitude: -80.0,
				Status: StatusPending, Severity: SeverityMedium, CreatedAt: created, UserID: "u-1"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, nil)
	rows, err := client.ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r-1", rows[0].ID)
	assert.True(t, created.Equal(rows[0].CreatedAt))
}

func TestClientInsertReportSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer tkn-123", r.Header.Get("Authorization"))

		var draft Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		writeEnvelope(w, http.StatusCreated, "success", "Report created successfully", Row{
			ID: "r-9", Title: draft.Title, Description: draft.Description,
			Latitude: draft.Latitude, Longitude: draft.Longitude,
			Status: draft.Status, Severity: draft.Severity,
			CreatedAt: time.Now().UTC(), UserID: "u-7",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, func() string { return "tkn-123" })
	row, err := client.InsertReport(context.Background(), "u-7", Draft{
		Title: "Spill", Latitude: 25.0, Longitude: -80.0,
		Status: StatusPending, Severity: SeverityMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, "r-9", row.ID)
	assert.Equal(t, "u-7", row.UserID)
}

func TestClientProfilesByUserIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/profiles", r.URL.Path)
		require.Equal(t, "u-1,u-2", r.URL.Query().Get("ids"))
		writeEnvelope(w, http.StatusOK, "success", "Profiles fetched successfully", []Profile{
			{UserID: "u-1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
			{UserID: "u-2", Email: "a@b.com"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, nil)
	profiles, err := client.ProfilesByUserIDs(context.Background(), []string{"u-1", "u-2"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Jane", profiles[0].FirstName)
}

func TestClientSurfacesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "Failed to fetch reports",
			"error":   "cursor timeout",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL, nil)
	_, err := client.ListReports(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch reports")
	assert.Contains(t, err.Error(), "cursor timeout")
}

func TestSessionLoginFiresOnLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "jane@example.com", creds["email"])

		writeEnvelope(w, http.StatusOK, "success", "Login successful", map[string]string{
			"id":    "u-1",
			"token": "tkn-123",
			"email": "jane@example.com",
		})
	}))
	defer srv.Close()

	session := NewSession(srv.URL)
	_, ok := session.Current()
	require.False(t, ok)

	var loggedIn []User
	session.OnLogin(func(_ context.Context, u User) {
		loggedIn = append(loggedIn, u)
	})

	require.NoError(t, session.Login(context.Background(), "jane@example.com", "hunter22"))

	user, ok := session.Current()
	require.True(t, ok)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "tkn-123", session.Token())
	require.Len(t, loggedIn, 1)
	assert.Equal(t, "u-1", loggedIn[0].ID)

	session.Logout()
	_, ok = session.Current()
	assert.False(t, ok)
	assert.Empty(t, session.Token())
}

func TestSessionLoginRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "Invalid email or password",
		})
	}))
	defer srv.Close()

	session := NewSession(srv.URL)
	err := session.Login(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)
	_, ok := session.Current()
	assert.False(t, ok)
}
