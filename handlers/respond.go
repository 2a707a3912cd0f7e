package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/pkg/apperrors"
	"github.com/gotodo/todo-service/pkg/logger"
)

// errInvalidBody answers bodies that are not JSON or carry fields of the wrong type.
var errInvalidBody = apperrors.New(apperrors.CodeValidation, "Invalid request body")

// respondError writes err as {"error": msg} with the status of its code.
// Validation failures also carry the list of violated rules.
func respondError(c *gin.Context, err error) {
	ae := apperrors.From(err)
	status := ae.Code.HTTPStatus()
	if ae.Code == apperrors.CodeInternal {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, ae.Body())
}
