package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weibaohui/energyaudit/backend/internal/service"
	"k8s.io/klog/v2"
)

// maxUploadSize 上传问卷的大小上限
const maxUploadSize = 20 << 20

type QuestionnaireHandler struct {
	store         *ProjectStore
	questionnaire *service.QuestionnaireService
}

func NewQuestionnaireHandler(store *ProjectStore, questionnaire *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{store: store, questionnaire: questionnaire}
}

func (h *QuestionnaireHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/exports/questionnaire.pdf", h.Export)
	router.POST("/imports/questionnaire", h.Import)
}

// Export 导出会话布局的问卷
// fillable=true 时生成可被 Import 读回的表单
func (h *QuestionnaireHandler) Export(c *gin.Context) {
	cfg, ok := loadProject(h.store, c)
	if !ok {
		return
	}
	fillable := c.Query("fillable") == "true"

	var buf bytes.Buffer
	if err := h.questionnaire.Export(c.Request.Context(), &buf, cfg, c.Query("editor"), fillable); err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		klog.Errorf("ExportQuestionnaire: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := "Fragebogen"
	if fillable {
		name = "Fragebogen_ausfuellbar"
	}
	sendPDF(c, fmt.Sprintf("%s_%s.pdf", name, time.Now().Format("20060102")), &buf)
}

// Import 从 multipart 字段 "file" 读取已填写的问卷
func (h *QuestionnaireHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keine Datei hochgeladen"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	cfg, ok := loadProject(h.store, c)
	if !ok {
		return
	}
	result, err := h.questionnaire.Import(c.Request.Context(), cfg, file)
	if err != nil {
		if errors.Is(err, service.ErrUnreadableForm) {
			klog.Warningf("ImportQuestionnaire: %s: %v", header.Filename, err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		klog.Errorf("ImportQuestionnaire: %s: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
