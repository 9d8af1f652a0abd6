package pickup

import (
	"net/http"

	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/apperror"
	"github.com/Justoo1/daycare-management-system-sub000/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func callerScope(c *gin.Context) (tenantID, actorID, classID string) {
	return c.GetString("tenant_id"), c.GetString("user_id"), c.GetString("class_id")
}

func (h *Handler) CheckOutDirect(c *gin.Context) {
	tenantID, actorID, classID := callerScope(c)

	var req DirectCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.CheckOutDirect(c.Request.Context(), tenantID, actorID, classID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) InitiateSecureCheckout(c *gin.Context) {
	tenantID, actorID, classID := callerScope(c)

	var req InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.InitiateSecureCheckout(c.Request.Context(), tenantID, actorID, classID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) VerifyCheckoutCode(c *gin.Context) {
	tenantID, actorID, classID := callerScope(c)
	id := c.Param("id")

	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.VerifyCheckoutCode(c.Request.Context(), tenantID, actorID, classID, id, req.Code)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ResendCode(c *gin.Context) {
	tenantID, _, classID := callerScope(c)
	id := c.Param("id")

	resp, err := h.service.ResendCode(c.Request.Context(), tenantID, classID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CancelPendingCheckout(c *gin.Context) {
	tenantID, _, classID := callerScope(c)
	id := c.Param("id")

	if err := h.service.CancelPendingCheckout(c.Request.Context(), tenantID, classID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true}, nil)
}
