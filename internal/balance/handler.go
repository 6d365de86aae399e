package balance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitpot/pkg/logger"
	"github.com/fkhayef/splitpot/pkg/middleware"
	"github.com/fkhayef/splitpot/pkg/response"
)

// Handler handles HTTP requests for balance operations
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/group/{groupId}", h.GetByGroup)
	r.Get("/group/{groupId}/export", h.ExportGroup)

	return r
}

// GetByGroup handles GET /balances/group/{groupId}
// @Summary      Get group balances
// @Description  Compute each active member's paid total, share total, and net position in the settlement currency
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupBalancesResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GetByGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	balances, err := h.service.ComputeBalances(r.Context(), userID, groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, balances.ToResponse())
}

// ExportGroup handles GET /balances/group/{groupId}/export
// @Summary      Export group balances
// @Description  Get the group's balances together with its full expense history
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=ExportResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /balances/group/{groupId}/export [get]
func (h *Handler) ExportGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	export, err := h.service.ExportGroup(r.Context(), userID, groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, export.ToResponse())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	default:
		logger.Log.WithError(err).Error("balance operation failed")
		response.InternalError(w, "Something went wrong")
	}
}
