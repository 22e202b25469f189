package customer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agendahub/agenda-api/internal/handler"
	"github.com/agendahub/agenda-api/internal/middleware"
	"github.com/agendahub/agenda-api/internal/model"
	"github.com/agendahub/agenda-api/internal/service/customer"
	"github.com/agendahub/agenda-api/internal/service/export"
	"github.com/agendahub/agenda-api/pkg/httputil"
)

type Handler struct {
	svc       *customer.Service
	exportSvc *export.Service
}

func NewHandler(svc *customer.Service, exportSvc *export.Service) *Handler {
	return &Handler{svc: svc, exportSvc: exportSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/customers")
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.GET("/export", h.Export)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
		customers.POST("/:id/restore", h.Restore)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) List(c *gin.Context) {
	var filter model.CustomerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.BindError(c, err)
		return
	}

	customers, err := h.svc.List(c.Request.Context(), middleware.UserID(c), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	if page := httputil.ParsePage(c); page.Requested {
		httputil.SetPageHeaders(c, page, len(customers))
		customers = httputil.Window(customers, page)
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(customers))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid customer ID"))
		return
	}

	found, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid customer ID"))
		return
	}

	var req model.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

// Delete parks the customer as inactive; the record and its appointment
// history remain.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid customer ID"))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "customer deactivated"}))
}

func (h *Handler) Restore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid customer ID"))
		return
	}

	if err := h.svc.Restore(c.Request.Context(), middleware.UserID(c), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "customer restored"}))
}

func (h *Handler) Export(c *gin.Context) {
	format := export.Format(c.DefaultQuery("format", "csv"))

	doc, err := h.exportSvc.Customers(c.Request.Context(), middleware.UserID(c), format)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
