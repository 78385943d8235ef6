package memberships

import (
	"context"
	"errors"
	"net/http"

	"gameon/internal/events"
	"gameon/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetMembership(c *gin.Context)
	ListMyMemberships(c *gin.Context)
	ClaimSeat(c *gin.Context)
	LeaveSeat(c *gin.Context)
	LeaveWaitlist(c *gin.Context)
	RequestToJoin(c *gin.Context)
	AcceptRequest(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetMembership(c *gin.Context) {
	eventID, userID, ok := ctrl.pathAndUser(c)
	if !ok {
		return
	}

	status, err := ctrl.service.GetMembership(c.Request.Context(), eventID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to load membership")
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Membership retrieved successfully", status, nil)
}

func (ctrl *controller) ListMyMemberships(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	items, err := ctrl.service.ListUserMemberships(c.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to list memberships", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Memberships retrieved successfully", items, nil)
}

func (ctrl *controller) ClaimSeat(c *gin.Context) {
	ctrl.mutate(c, "Seat claim processed", ctrl.service.ClaimSeat)
}

func (ctrl *controller) LeaveSeat(c *gin.Context) {
	ctrl.mutate(c, "Leave processed", ctrl.service.LeaveSeat)
}

func (ctrl *controller) LeaveWaitlist(c *gin.Context) {
	ctrl.mutate(c, "Waitlist leave processed", ctrl.service.LeaveWaitlist)
}

func (ctrl *controller) RequestToJoin(c *gin.Context) {
	ctrl.mutate(c, "Join request processed", ctrl.service.RequestToJoin)
}

func (ctrl *controller) AcceptRequest(c *gin.Context) {
	eventID, hostID, ok := ctrl.pathAndUser(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid user ID", nil, err.Error())
		return
	}

	result, err := ctrl.service.AcceptRequest(c.Request.Context(), eventID, hostID, targetID)
	if err != nil {
		if errors.Is(err, ErrNotHost) {
			response.RespondJSON(c, "error", http.StatusForbidden, "Only the host can accept requests", nil, nil)
			return
		}
		respondServiceError(c, err, "Failed to accept request")
		return
	}

	respondResult(c, "Request accept processed", result)
}

// mutate runs the common path for the single-user seat operations: path and
// identity extraction, the service call, then the result envelope.
func (ctrl *controller) mutate(c *gin.Context, message string, op func(ctx context.Context, eventID, userID uuid.UUID) (*Result, error)) {
	eventID, userID, ok := ctrl.pathAndUser(c)
	if !ok {
		return
	}

	result, err := op(c.Request.Context(), eventID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to process membership operation")
		return
	}

	respondResult(c, message, result)
}

func (ctrl *controller) pathAndUser(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid event ID", nil, err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, userID, true
}

// respondResult maps a structured operation result onto the HTTP envelope.
// Policy rejections stay HTTP 200 with success=false in the payload; the
// client branches on the result, not the status code.
func respondResult(c *gin.Context, message string, result *Result) {
	status := "success"
	if !result.Success {
		status = "rejected"
	}
	response.RespondJSON(c, status, http.StatusOK, message, result, nil)
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, events.ErrEventNotFound) {
		response.RespondJSON(c, "error", http.StatusNotFound, "Event not found", nil, nil)
		return
	}
	response.RespondJSON(c, "error", http.StatusInternalServerError, fallback, nil, nil)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	str, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
