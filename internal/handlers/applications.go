package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/internal/ids"
	"coursehub/internal/models"
)

// Apply submits a learner application for a course. The application starts in
// in_review and triggers the registration notification.
func (h HandlerSet) Apply(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	app, err := h.flow.SubmitApplication(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "application": gin.H{
		"id":       app.ID,
		"courseId": app.CourseID,
		"status":   app.Status,
		"nextStep": app.Status.NextStepHint(),
	}})
}

// MyApplications is the learner dashboard view: status plus next-step hint.
func (h HandlerSet) MyApplications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	views, err := h.apps.ListByLearner(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(views))
	for _, v := range views {
		items = append(items, gin.H{
			"id":          v.ID,
			"courseId":    v.CourseID,
			"courseTitle": v.CourseTitle,
			"status":      v.Status,
			"nextStep":    v.NextStep,
			"createdAt":   v.CreatedAt,
			"updatedAt":   v.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (h HandlerSet) MyEnrollments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	views, err := h.enrollments.ListByLearner(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(views))
	for _, v := range views {
		items = append(items, gin.H{
			"id":             v.ID,
			"courseId":       v.CourseID,
			"courseTitle":    v.CourseTitle,
			"instructorName": v.InstructorName,
			"enrollmentDate": v.EnrollmentDate,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

type confirmPaymentRequest struct {
	ApplicationID string `json:"applicationId" binding:"required"`
	Reference     string `json:"reference" binding:"required"`
}

// ConfirmPayment is the system-actor transition invoked by the payment flow,
// not by a human role.
func (h HandlerSet) ConfirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	out, err := h.flow.ConfirmPayment(c.Request.Context(), req.ApplicationID, req.Reference)
	if err != nil {
		fail(c, err)
		return
	}
	outcome(c, out)
}

const maxDocumentSize = 10 << 20 // 10 MiB

// UploadDocument attaches a compliance document to the learner's own
// application. The file lands in the object store; only the key is persisted.
func (h HandlerSet) UploadDocument(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	app, err := h.apps.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if app.LearnerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "file is required"})
		return
	}
	if fileHeader.Size > maxDocumentSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc := models.ApplicationDocument{
		ID:            ids.New(),
		ApplicationID: app.ID,
		ObjectKey:     fmt.Sprintf("applications/%s/%s", app.ID, fileHeader.Filename),
		Filename:      fileHeader.Filename,
		ContentType:   contentType,
		SizeBytes:     fileHeader.Size,
	}

	if err := h.store.PutDocument(c.Request.Context(), doc.ObjectKey, file, doc.SizeBytes, doc.ContentType); err != nil {
		h.log.Error().Err(err).Str("application_id", app.ID).Msg("document upload failed")
		fail(c, err)
		return
	}
	if err := h.documents.Create(c.Request.Context(), doc); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "document": gin.H{
		"id":       doc.ID,
		"filename": doc.Filename,
	}})
}
