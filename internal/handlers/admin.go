package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursehub/internal/models"
	"coursehub/internal/workflow"
)

type statusActionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// InstructorStatus drives the instructor profile lifecycle. The action names
// the target status; the transition table decides legality.
func (h HandlerSet) InstructorStatus(c *gin.Context) {
	var req statusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	id := c.Param("id")
	var (
		out workflow.Outcome
		err error
	)
	switch req.Action {
	case "approved":
		out, err = h.flow.ApproveInstructor(c.Request.Context(), id)
	case "suspended":
		out, err = h.flow.SuspendInstructor(c.Request.Context(), id, req.Reason)
	case "reinstated":
		out, err = h.flow.ReinstateInstructor(c.Request.Context(), id)
	case "banned":
		out, err = h.flow.BanInstructor(c.Request.Context(), id, req.Reason)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown action " + req.Action})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	outcome(c, out)
}

func (h HandlerSet) CourseStatus(c *gin.Context) {
	var req statusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	id := c.Param("id")
	var (
		out workflow.Outcome
		err error
	)
	switch req.Action {
	case "approved":
		out, err = h.flow.ApproveCourse(c.Request.Context(), id)
	case "suspended":
		out, err = h.flow.SuspendCourse(c.Request.Context(), id, req.Reason)
	case "reinstated":
		out, err = h.flow.ReinstateCourse(c.Request.Context(), id)
	case "banned":
		out, err = h.flow.BanCourse(c.Request.Context(), id, req.Reason)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown action " + req.Action})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	outcome(c, out)
}

// ApplicationStatus drives the learner application pipeline. payment_completed
// is deliberately absent: that transition belongs to the payment flow, not to
// an admin.
func (h HandlerSet) ApplicationStatus(c *gin.Context) {
	var req statusActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	id := c.Param("id")
	var (
		out workflow.Outcome
		err error
	)
	switch req.Action {
	case "pending_payment":
		out, err = h.flow.RequestPayment(c.Request.Context(), id)
	case "approved":
		out, err = h.flow.ApproveLearnerApplication(c.Request.Context(), id)
	case "rejected":
		out, err = h.flow.RejectLearnerApplication(c.Request.Context(), id, req.Reason)
	case "waitlisted":
		out, err = h.flow.WaitlistApplication(c.Request.Context(), id)
	case "in_review":
		out, err = h.flow.ResumeApplication(c.Request.Context(), id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown action " + req.Action})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	outcome(c, out)
}

func (h HandlerSet) PendingInstructors(c *gin.Context) {
	users, err := h.users.ListPendingInstructors(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (h HandlerSet) PendingCourses(c *gin.Context) {
	courses, err := h.courses.ListPending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(courses))
	for _, course := range courses {
		items = append(items, gin.H{
			"id":           course.ID,
			"instructorId": course.InstructorID,
			"title":        course.Title,
			"status":       course.Status,
			"createdAt":    course.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (h HandlerSet) ListApplications(c *gin.Context) {
	status := models.ApplicationStatus(c.DefaultQuery("status", string(models.ApplicationStatusInReview)))

	limit := 50
	offset := 0
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	apps, err := h.apps.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(apps))
	for _, app := range apps {
		items = append(items, gin.H{
			"id":        app.ID,
			"learnerId": app.LearnerID,
			"courseId":  app.CourseID,
			"status":    app.Status,
			"reason":    app.DecisionReason,
			"createdAt": app.CreatedAt,
			"updatedAt": app.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (h HandlerSet) ListDocuments(c *gin.Context) {
	docs, err := h.documents.ListByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		items = append(items, gin.H{
			"id":          d.ID,
			"filename":    d.Filename,
			"contentType": d.ContentType,
			"sizeBytes":   d.SizeBytes,
			"uploadedAt":  d.UploadedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

func (h HandlerSet) DownloadDocument(c *gin.Context) {
	doc, err := h.documents.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	obj, err := h.store.GetDocument(c.Request.Context(), doc.ObjectKey)
	if err != nil {
		fail(c, err)
		return
	}
	defer obj.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Header("Content-Type", doc.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj); err != nil {
		h.log.Error().Err(err).Str("document_id", doc.ID).Msg("document stream failed")
	}
}
