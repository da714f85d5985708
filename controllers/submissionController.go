package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrayerRoom/models"
	"github.com/PrayerRoom/workflows"
)

type ResolveConflictRequest struct {
	Choice workflows.ConflictChoice `json:"choice" binding:"required"`
}

// CreateSubmission opens a submission workflow with the posted form and submits it.
// POST /submissions
func CreateSubmission(c *gin.Context) {
	var form models.PrayerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	submission := workflows.NewSubmission(recordStore(),
		workflows.WithSubmissionLogger(logger),
		workflows.WithSubmissionListener(listener),
	)
	if err := submission.Edit(form); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start submission", "details": err.Error()})
		return
	}

	sessionID := Sessions.AddSubmission(submission)
	err := submission.Submit(c.Request.Context())
	respondSubmission(c, sessionID, submission, err, http.StatusCreated)
}

// GetSubmission returns the current display state of a submission.
// GET /submissions/:session_id
func GetSubmission(c *gin.Context) {
	sessionID := c.Param("session_id")
	submission, ok := Sessions.Submission(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "submission": submission.View()})
}

// ResubmitSubmission replaces the form and submits again, after a failed
// attempt or an abandoned conflict.
// PUT /submissions/:session_id
func ResubmitSubmission(c *gin.Context) {
	sessionID := c.Param("session_id")
	submission, ok := Sessions.Submission(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission session not found"})
		return
	}

	var form models.PrayerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := submission.Edit(form); err != nil {
		respondSubmission(c, sessionID, submission, err, http.StatusOK)
		return
	}

	err := submission.Submit(c.Request.Context())
	respondSubmission(c, sessionID, submission, err, http.StatusOK)
}

// ResolveSubmissionConflict applies KEEP_OLD, REPLACE_NEW or ABANDON.
// POST /submissions/:session_id/resolve
func ResolveSubmissionConflict(c *gin.Context) {
	sessionID := c.Param("session_id")
	submission, ok := Sessions.Submission(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission session not found"})
		return
	}

	var req ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	err := submission.ResolveConflict(c.Request.Context(), req.Choice)
	respondSubmission(c, sessionID, submission, err, http.StatusOK)
}

func respondSubmission(c *gin.Context, sessionID string, submission *workflows.Submission, err error, okStatus int) {
	view := submission.View()

	if err != nil {
		status := workflowErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("submission action failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		body := workflowErrorBody(err)
		body["sessionId"] = sessionID
		body["submission"] = view
		c.JSON(status, body)
		return
	}

	c.JSON(okStatus, gin.H{"sessionId": sessionID, "submission": view})
}
