package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"

	"github.com/PrayerRoom/initializers"
	"github.com/PrayerRoom/workflows"
)

// SetupTestDB creates a mock database and sets it as the global DB for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	goquDB := goqu.New("postgres", db)

	originalDB := initializers.DB
	initializers.DB = goquDB

	cleanup := func() {
		db.Close()
		initializers.DB = originalDB
	}

	return db, mock, cleanup
}

// SetupTestSessions installs a fresh session registry and listener for the test
func SetupTestSessions(t *testing.T, submissionListener workflows.SubmissionListener) *SessionRegistry {
	originalSessions, originalListener := Sessions, listener
	sessions := NewSessionRegistry(time.Hour)
	Configure(nil, sessions, submissionListener)

	t.Cleanup(func() {
		Sessions = originalSessions
		listener = originalListener
	})
	return sessions
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// SetDevice sets the deviceId value in the Gin context
// This simulates what the DeviceID middleware does
func SetDevice(c *gin.Context, deviceID string) {
	c.Set("deviceId", deviceID)
}

func jsonBody(t *testing.T, body interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal body: %v", err)
	}
	return bytes.NewBuffer(data)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return response
}
