package handler

import (
	"net/http"
	"strings"

	"gasdepot/internal/domain"
	"gasdepot/internal/models"
	"gasdepot/internal/repository"

	"github.com/gin-gonic/gin"
)

type SubscriberHandler struct {
	repo *repository.SubscriberRepository
}

func NewSubscriberHandler(repo *repository.SubscriberRepository) *SubscriberHandler {
	return &SubscriberHandler{repo: repo}
}

// Create handles POST /api/subscribers.
func (h *SubscriberHandler) Create(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validation("a valid email is required"))
		return
	}
	s := &models.Subscriber{Email: strings.ToLower(strings.TrimSpace(req.Email))}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			respondError(c, domain.Conflict("already subscribed", err))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}
