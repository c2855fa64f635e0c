package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"github.com/weibaohui/energyaudit/backend/internal/service"
)

type GlossaryHandler struct {
	service *service.GlossaryService
}

func NewGlossaryHandler(service *service.GlossaryService) *GlossaryHandler {
	return &GlossaryHandler{service: service}
}

func (h *GlossaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/glossary", h.Lookup)
	router.GET("/glossary/suggest", h.Suggest)
}

func glossaryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTermNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Begriff nicht gefunden"})
	case errors.Is(err, workbook.ErrWorkbookUnavailable), errors.Is(err, workbook.ErrSheetNotFound):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *GlossaryHandler) Lookup(c *gin.Context) {
	term := c.Query("term")
	explanation, err := h.service.Lookup(term)
	if err != nil {
		glossaryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"term": term, "explanation": explanation})
}

func (h *GlossaryHandler) Suggest(c *gin.Context) {
	terms, err := h.service.Suggest(c.Query("q"))
	if err != nil {
		glossaryError(c, err)
		return
	}
	c.JSON(http.StatusOK, terms)
}
