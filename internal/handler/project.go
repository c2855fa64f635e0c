package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/service"
	"k8s.io/klog/v2"
)

// ProjectHandler 管理调用方的实例布局
type ProjectHandler struct {
	store     *ProjectStore
	questions *service.QuestionService
}

func NewProjectHandler(store *ProjectStore, questions *service.QuestionService) *ProjectHandler {
	return &ProjectHandler{store: store, questions: questions}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/project", h.Get)
	router.PUT("/project", h.Update)
	router.DELETE("/project", h.Reset)
	router.GET("/categories", h.Categories)
}

type categoryResponse struct {
	Value  domain.Category `json:"value"`
	Label  string          `json:"label"`
	Nested bool            `json:"nested"`
}

func (h *ProjectHandler) Categories(c *gin.Context) {
	var out []categoryResponse
	for _, cat := range domain.Categories() {
		out = append(out, categoryResponse{Value: cat, Label: cat.Label(), Nested: cat.Nested()})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	cfg, err := h.store.Load(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// Update 替换配置，并为每个新实例从模板复制问题
func (h *ProjectHandler) Update(c *gin.Context) {
	next := domain.NewProjectConfig()
	if err := c.ShouldBindJSON(&next); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next.Normalize()
	if err := next.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prev, err := h.store.Load(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.questions.Reconcile(c.Request.Context(), prev, next)
	if err != nil {
		klog.Errorf("UpdateProject: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Save(c.Request, c.Writer, next); err != nil {
		klog.Errorf("UpdateProject: save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"config":  next,
		"added":   result.Added,
		"pruned":  result.Pruned,
		"message": "Konfiguration gespeichert",
	})
}

// Reset 清除布局，已存储的问题保留
func (h *ProjectHandler) Reset(c *gin.Context) {
	if err := h.store.Clear(c.Request, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Konfiguration zurückgesetzt"})
}
