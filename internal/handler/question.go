package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
	"github.com/weibaohui/energyaudit/backend/internal/model"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"github.com/weibaohui/energyaudit/backend/internal/service"
	"k8s.io/klog/v2"
)

type QuestionHandler struct {
	store     *ProjectStore
	questions *service.QuestionService
}

func NewQuestionHandler(store *ProjectStore, questions *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{store: store, questions: questions}
}

func (h *QuestionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/questions", h.List)
	router.POST("/questions", h.Create)
	router.DELETE("/questions/:id", h.Delete)
	router.PUT("/questions/answers", h.SaveAnswers)
	router.POST("/questions/reset-answers", h.ResetAnswers)
	router.POST("/questions/synchronize", h.Synchronize)
	router.POST("/questions/copy-answers", h.CopyAnswers)
	router.GET("/questions/has-answers", h.HasAnswers)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// loadProject 读取会话中的配置，失败时直接写入错误响应
func (h *QuestionHandler) loadProject(c *gin.Context) (domain.ProjectConfig, bool) {
	return loadProject(h.store, c)
}

func loadProject(store *ProjectStore, c *gin.Context) (domain.ProjectConfig, bool) {
	cfg, err := store.Load(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return cfg, false
	}
	return cfg, true
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &n, nil
}

// List 返回已存储的问题
// configured=true 时只返回会话布局中的实例，否则按 category/instance/sub 过滤
func (h *QuestionHandler) List(c *gin.Context) {
	if c.Query("configured") == "true" {
		cfg, ok := h.loadProject(c)
		if !ok {
			return
		}
		questions, err := h.questions.ListConfigured(c.Request.Context(), cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, questions)
		return
	}

	var filter model.QuestionFilter
	if raw := c.Query("category"); raw != "" {
		cat, err := domain.ParseCategory(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Category = &cat
	}
	var err error
	if filter.Instance, err = queryInt(c, "instance"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Sub, err = queryInt(c, "sub"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions, err := h.questions.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var req service.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	cfg, ok := h.loadProject(c)
	if !ok {
		return
	}

	q, err := h.questions.AddQuestion(c.Request.Context(), cfg, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrQuestionExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			klog.Errorf("CreateQuestion: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, q)
}

// Delete 从所有实例中删除该问题
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	removed, err := h.questions.DeleteQuestion(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "removed": removed})
}

type saveAnswersRequest struct {
	Answers map[uint]string `json:"answers" binding:"required"`
}

func (h *QuestionHandler) SaveAnswers(c *gin.Context) {
	var req saveAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.questions.SaveAnswers(c.Request.Context(), req.Answers); err != nil {
		if errors.Is(err, repository.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Antworten gespeichert", "saved": len(req.Answers)})
}

type resetAnswersRequest struct {
	Category *domain.Category `json:"category"`
}

// ResetAnswers 清空某个类别的答案，未指定类别时清空全部
func (h *QuestionHandler) ResetAnswers(c *gin.Context) {
	var req resetAnswersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Category != nil && !req.Category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	n, err := h.questions.ResetAnswers(c.Request.Context(), req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Antworten zurückgesetzt", "reset": n})
}

type instanceRequest struct {
	Instance int `json:"instance" binding:"required,min=1"`
}

// Synchronize 将某个实例序号的问题集同步到其他已配置实例
func (h *QuestionHandler) Synchronize(c *gin.Context) {
	req := instanceRequest{Instance: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cfg, ok := h.loadProject(c)
	if !ok {
		return
	}
	added, err := h.questions.Synchronize(c.Request.Context(), cfg, req.Instance)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fragen synchronisiert", "added": added})
}

// CopyAnswers 将嵌套实例中子实例 1 的答案复制到其他子实例
func (h *QuestionHandler) CopyAnswers(c *gin.Context) {
	var req instanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, ok := h.loadProject(c)
	if !ok {
		return
	}
	if req.Instance > cfg.Count(domain.OutletSub) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "instance is not configured"})
		return
	}
	updated, err := h.questions.CopyAnswers(c.Request.Context(), cfg, req.Instance)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Antworten kopiert", "updated": updated})
}

func (h *QuestionHandler) HasAnswers(c *gin.Context) {
	cfg, ok := h.loadProject(c)
	if !ok {
		return
	}
	has, err := h.questions.HasAnswers(c.Request.Context(), cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_answers": has})
}
