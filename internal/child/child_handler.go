package child

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

func (h *Handler) Create(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var req CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	resp, err := h.service.GetAll(c.Request.Context(), tenantID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	id := c.Param("id")

	resp, err := h.service.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	id := c.Param("id")

	var req UpdateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), tenantID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusNoContent, nil, nil)
}

func (h *Handler) AddGuardian(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	childID := c.Param("id")

	var req GuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.AddGuardian(c.Request.Context(), tenantID, childID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) UpdateGuardian(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	childID := c.Param("id")
	guardianID := c.Param("guardianId")

	var req GuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.UpdateGuardian(c.Request.Context(), tenantID, childID, guardianID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RemoveGuardian(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	childID := c.Param("id")
	guardianID := c.Param("guardianId")

	if err := h.service.RemoveGuardian(c.Request.Context(), tenantID, childID, guardianID); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusNoContent, nil, nil)
}
