package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrayerRoom/initializers"
	"github.com/PrayerRoom/stores"
	"github.com/PrayerRoom/workflows"
)

var (
	Sessions = NewSessionRegistry(30 * time.Minute)

	logger   = zap.NewNop()
	listener workflows.SubmissionListener
)

// Configure installs the logger, session registry and submission listener the handlers use.
func Configure(l *zap.Logger, sessions *SessionRegistry, submissionListener workflows.SubmissionListener) {
	if l != nil {
		logger = l
	}
	if sessions != nil {
		Sessions = sessions
	}
	listener = submissionListener
}

func recordStore() stores.RecordStore {
	return stores.NewGoquRecordStore(initializers.DB)
}

func tallyStore(deviceID string) stores.TallyStore {
	return stores.NewGoquTallyStore(initializers.DB).ForDevice(deviceID)
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// workflowErrorStatus maps a workflow error onto the status the shell responds with.
func workflowErrorStatus(err error) int {
	var validationErr *workflows.ValidationError
	var storeErr *workflows.StoreError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &storeErr):
		return http.StatusBadGateway
	case errors.Is(err, workflows.ErrInvalidTransition), errors.Is(err, workflows.ErrToggleInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func workflowErrorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}

	var validationErr *workflows.ValidationError
	if errors.As(err, &validationErr) {
		body["field"] = validationErr.Field
	}
	return body
}
