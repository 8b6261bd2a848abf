package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/internal/models"
	"coursehub/internal/workflow"
)

// fail maps the workflow error taxonomy onto HTTP statuses: validation 400,
// not-found 404, illegal transition 409, everything else 500. Raw datastore
// errors never reach the response body.
func fail(c *gin.Context, err error) {
	var (
		ve *workflow.ValidationError
		nf *workflow.NotFoundError
		it *workflow.InvalidTransitionError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ve.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": nf.Error()})
	case errors.As(err, &it):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": it.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}

// outcome reports a committed status change. A failed notification enqueue
// becomes a warning on an otherwise successful response.
func outcome(c *gin.Context, out workflow.Outcome) {
	resp := gin.H{"success": true, "status": out.Status}
	if out.NotifyErr != nil {
		resp["warning"] = "status change committed, but the notification could not be enqueued"
	}
	c.JSON(http.StatusOK, resp)
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
