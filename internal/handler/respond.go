package handler

import (
	"gasdepot/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError writes {"error": message} with the status for err's kind. The
// full error is attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(domain.HTTPStatus(err), gin.H{"error": domain.PublicMessage(err)})
}
