package maintenance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches maintenance routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files", h.listFiles)
	rg.DELETE("/data", h.deleteAll)
}

func (h *Handler) listFiles(c *gin.Context) {
	files, err := h.Svc.ListFiles(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list files", nil)
		return
	}
	respond.OK(c, gin.H{"files": files})
}

func (h *Handler) deleteAll(c *gin.Context) {
	res, err := h.Svc.DeleteAll(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to wipe data", res)
		return
	}
	respond.OK(c, res)
}
