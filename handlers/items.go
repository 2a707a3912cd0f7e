package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/internal/items/service"
	"github.com/gotodo/todo-service/internal/models"
	"github.com/gotodo/todo-service/pkg/apperrors"
	"github.com/gotodo/todo-service/pkg/metrics"
	"github.com/gotodo/todo-service/pkg/middleware"
)

const msgItemDeleted = "Todo deleted successfully"

type createItemRequest struct {
	Text string `json:"text"`
}

// updateItemRequest only decodes mergeable fields; anything else in the body is ignored.
type updateItemRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// ItemHandler serves the owner-scoped item routes.
type ItemHandler struct {
	svc service.Service
}

func NewItemHandler(svc service.Service) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// RegisterRoutes mounts /items. mw must include the auth middleware.
func (h *ItemHandler) RegisterRoutes(rg gin.IRouter, mw ...gin.HandlerFunc) {
	g := rg.Group("/items", mw...)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// owner returns the verified caller. The auth middleware guarantees it is set;
// a missing principal is treated as unauthenticated.
func owner(c *gin.Context) (string, bool) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		respondError(c, apperrors.ErrNoToken)
		return "", false
	}
	return p.UserID, true
}

func (h *ItemHandler) List(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	list, err := h.svc.ListOwned(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	metrics.ItemOperations.WithLabelValues("list", "success").Inc()
	c.JSON(http.StatusOK, list)
}

func (h *ItemHandler) Create(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errInvalidBody)
		return
	}
	it, err := h.svc.Create(c.Request.Context(), uid, req.Text)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	metrics.ItemOperations.WithLabelValues("create", "success").Inc()
	c.JSON(http.StatusCreated, it)
}

func (h *ItemHandler) Update(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errInvalidBody)
		return
	}
	patch := models.ItemPatch{Text: req.Text, Completed: req.Completed}
	it, err := h.svc.Update(c.Request.Context(), uid, c.Param("id"), patch)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	metrics.ItemOperations.WithLabelValues("update", "success").Inc()
	c.JSON(http.StatusOK, it)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.fail(c, "delete", err)
		return
	}
	metrics.ItemOperations.WithLabelValues("delete", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"message": msgItemDeleted})
}

func (h *ItemHandler) fail(c *gin.Context, op string, err error) {
	out := "error"
	switch apperrors.From(err).Code {
	case apperrors.CodeValidation:
		out = "invalid"
	case apperrors.CodeNotFoundOrForbidden:
		out = "not_found"
	}
	metrics.ItemOperations.WithLabelValues(op, out).Inc()
	respondError(c, err)
}
