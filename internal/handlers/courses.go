package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"coursehub/internal/ids"
	"coursehub/internal/models"
)

type createCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents" binding:"min=0"`
}

type courseResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Status      string `json:"status"`
}

// CreateCourse registers a new course in pending; it becomes visible to
// learners only after super-admin approval.
func (h HandlerSet) CreateCourse(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	course := models.Course{
		ID:           ids.New(),
		InstructorID: user.ID,
		Title:        req.Title,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		Status:       models.CourseStatusPending,
	}
	if err := h.courses.Create(c.Request.Context(), course); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": courseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		PriceCents:  course.PriceCents,
		Status:      string(course.Status),
	}})
}

// ListCourses is the public catalog: approved courses only.
func (h HandlerSet) ListCourses(c *gin.Context) {
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

	listings, err := h.courses.ListApproved(c.Request.Context(), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(listings))
	for _, l := range listings {
		items = append(items, gin.H{
			"id":             l.ID,
			"title":          l.Title,
			"description":    l.Description,
			"priceCents":     l.PriceCents,
			"status":         l.Status,
			"instructorName": l.InstructorName,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}

// MyCourses is the instructor dashboard view: own courses with status badges.
func (h HandlerSet) MyCourses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	courses, err := h.courses.ListByInstructor(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]courseResponse, 0, len(courses))
	for _, course := range courses {
		items = append(items, courseResponse{
			ID:          course.ID,
			Title:       course.Title,
			Description: course.Description,
			PriceCents:  course.PriceCents,
			Status:      string(course.Status),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}
