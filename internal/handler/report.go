package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"github.com/weibaohui/energyaudit/backend/internal/service"
	"k8s.io/klog/v2"
)

const pdfContentType = "application/pdf"

type ReportHandler struct {
	store   *ProjectStore
	reports *service.ReportService
}

func NewReportHandler(store *ProjectStore, reports *service.ReportService) *ReportHandler {
	return &ReportHandler{store: store, reports: reports}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reports/solutions", h.Solutions)
	router.GET("/reports/solutions.pdf", h.SolutionsPDF)
}

func (h *ReportHandler) build(c *gin.Context) (*service.Report, bool) {
	cfg, ok := loadProject(h.store, c)
	if !ok {
		return nil, false
	}
	report, err := h.reports.Build(c.Request.Context(), cfg)
	if err != nil {
		klog.Errorf("BuildReport: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, workbook.ErrWorkbookUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	return report, true
}

// reportStatus 有解决方案时返回 200，否则 404，响应体始终带诊断信息
func reportStatus(report *service.Report) int {
	if report.Err() != nil {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// Solutions 返回筛选后的解决方案和每个实例的诊断记录
func (h *ReportHandler) Solutions(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}
	if err := report.Err(); err != nil {
		c.JSON(reportStatus(report), gin.H{
			"error":  err.Error(),
			"report": report,
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) SolutionsPDF(c *gin.Context) {
	report, ok := h.build(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.reports.RenderPDF(&buf, report); err != nil {
		if errors.Is(err, service.ErrNoSolutions) || errors.Is(err, service.ErrNoAnswers) {
			c.JSON(reportStatus(report), gin.H{"error": err.Error(), "diagnostics": report.Diagnostics})
			return
		}
		klog.Errorf("SolutionsPDF: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sendPDF(c, fmt.Sprintf("Loesungen_%s.pdf", time.Now().Format("20060102")), &buf)
}

func sendPDF(c *gin.Context, filename string, buf *bytes.Buffer) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, pdfContentType, buf.Bytes())
}
