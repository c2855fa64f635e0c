package main

import (
	"flag"
	"log"
	"os"

	"k8s.io/klog/v2"

	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/handler"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/database"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/pdfform"
	"github.com/weibaohui/energyaudit/backend/internal/pkg/workbook"
	"github.com/weibaohui/energyaudit/backend/internal/repository"
	"github.com/weibaohui/energyaudit/backend/internal/router"
	"github.com/weibaohui/energyaudit/backend/internal/service"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("starting server")

	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if cfg.Session.Secret == config.Default().Session.Secret {
		klog.Warning("session secret is the built-in default, set SESSION_SECRET")
	}
	if _, err := os.Stat(cfg.Data.WorkbookPath); err != nil {
		// 工作簿不存在时，报告和术语表接口会返回错误
		klog.Warningf("workbook %s: %v", cfg.Data.WorkbookPath, err)
	}

	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(db)
	timeEntryRepo := repository.NewTimeEntryRepository(db)

	// 每个请求重新打开工作簿，磁盘上的修改即时生效
	opener := workbook.FileOpener{Path: cfg.Data.WorkbookPath}

	questionService := service.NewQuestionService(cfg, questionRepo)
	reportService := service.NewReportService(cfg, questionRepo, opener)
	questionnaireService := service.NewQuestionnaireService(cfg, questionRepo, pdfform.NewReader())
	timeEntryService := service.NewTimeEntryService(timeEntryRepo)
	glossaryService := service.NewGlossaryService(cfg.Glossary, opener)

	store := handler.NewProjectStore(cfg.Session)

	r := router.Setup(cfg,
		handler.NewProjectHandler(store, questionService),
		handler.NewQuestionHandler(store, questionService),
		handler.NewReportHandler(store, reportService),
		handler.NewQuestionnaireHandler(store, questionnaireService),
		handler.NewTimeEntryHandler(timeEntryService),
		handler.NewGlossaryHandler(glossaryService),
	)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
