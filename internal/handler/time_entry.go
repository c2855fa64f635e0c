package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"github.com/weibaohui/energyaudit/backend/internal/service"
	"k8s.io/klog/v2"
)

type TimeEntryHandler struct {
	service *service.TimeEntryService
}

func NewTimeEntryHandler(service *service.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{service: service}
}

func (h *TimeEntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/time-entries", h.List)
	router.POST("/time-entries", h.Create)
	router.DELETE("/time-entries/:id", h.Delete)
	router.GET("/time-entries/report.pdf", h.Report)
	router.GET("/time-entries/category-hours", h.CategoryHours)
}

func (h *TimeEntryHandler) Create(c *gin.Context) {
	var req service.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEntry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// List 支持可选的 from/to 日期参数 (YYYY-MM-DD)
func (h *TimeEntryHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *TimeEntryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrTimeEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Report 生成 date 所在日/周/月的工时表，默认今天
func (h *TimeEntryHandler) Report(c *gin.Context) {
	period := service.Period(c.DefaultQuery("period", string(service.PeriodWeek)))
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		d, err := time.Parse(model.DateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
			return
		}
		day = d
	}

	var buf bytes.Buffer
	if err := h.service.Report(c.Request.Context(), &buf, period, day); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoEntries):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			klog.Errorf("TimeSheet: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	sendPDF(c, fmt.Sprintf("Zeiterfassung_%s_%s.pdf", period, day.Format("20060102")), &buf)
}

func (h *TimeEntryHandler) CategoryHours(c *gin.Context) {
	hours, err := h.service.CategoryHours(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, hours)
}
