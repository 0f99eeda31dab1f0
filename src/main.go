package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ria-board/src/assistant"
	"ria-board/src/config"
	"ria-board/src/domain"
	"ria-board/src/interface/handler"
	"ria-board/src/logger"
	"ria-board/src/routes"
	"ria-board/src/service"
	"ria-board/src/store"
	"ria-board/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 設定を読み込み
	cfg := config.LoadConfig()

	// ロガーを初期化
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.Directory); err != nil {
		panic(fmt.Sprintf("ロガーの初期化に失敗: %v", err))
	}
	defer logger.CloseLogger()

	logger.Log.Info("アプリケーションを開始しています")

	// ドキュメントストアを初期化
	var docStore domain.Store
	if cfg.Database.Driver == "memory" {
		logger.Log.Warn("インメモリストアを使用します（データは永続化されません）")
		docStore = store.NewMemoryStore()
	} else {
		pg, err := store.NewPostgresStore(&store.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
		}, logger.Log)
		if err != nil {
			logger.Log.WithError(err).Fatal("データベースへの接続に失敗")
		}
		defer pg.Close()
		docStore = pg
	}

	// オブジェクトストレージを初期化
	blobs, err := store.NewBlobStorage(&store.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
	}, logger.Log)
	if err != nil {
		logger.Log.WithError(err).Fatal("オブジェクトストレージの初期化に失敗")
	}

	// ユースケース層を初期化
	ideas := usecase.NewIdeaStore(docStore, logger.Log)
	pages := usecase.NewPageRegistry(docStore, ideas, logger.Log)
	library := usecase.NewDocumentLibrary(docStore, blobs, logger.Log)
	todos := usecase.NewTodoStore(docStore, logger.Log)
	hopper := usecase.NewHopperStore(docStore, logger.Log)
	consultant := usecase.NewConsultantStore(docStore, logger.Log)
	checklist := usecase.NewChecklistStore(docStore, logger.Log)

	// 初回ロード（失敗しても起動は継続、各ストアは再試行可能）
	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for name, load := range map[string]func(context.Context) error{
		"ideas":      ideas.Load,
		"pages":      pages.Load,
		"documents":  library.Load,
		"todos":      todos.Load,
		"hopper":     hopper.Load,
		"consultant": consultant.Load,
		"checklist":  checklist.Load,
	} {
		if err := load(loadCtx); err != nil {
			logger.Log.WithError(err).WithField("store", name).Error("初回ロードに失敗")
		}
	}

	// アシスタントを初期化
	var llm assistant.Client
	if cfg.Assistant.APIKey != "" {
		llm, err = assistant.NewClient(assistant.ClientConfig{
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			BaseURL: cfg.Assistant.BaseURL,
		})
		if err != nil {
			logger.Log.WithError(err).Fatal("アシスタントクライアントの初期化に失敗")
		}
	} else {
		logger.Log.Warn("GEMINI_API_KEYが未設定のためアシスタントは無効です")
		llm = assistant.NewDisabledClient()
	}
	bridge := assistant.NewBridge(llm, ideas, pages, consultant, library)

	var transcriber *assistant.Transcriber
	if cfg.Assistant.TranscribeAPIKey != "" {
		transcriber, err = assistant.NewTranscriber(assistant.TranscriberConfig{
			APIKey:  cfg.Assistant.TranscribeAPIKey,
			BaseURL: cfg.Assistant.TranscribeURL,
			Model:   cfg.Assistant.TranscribeModel,
		})
		if err != nil {
			logger.Log.WithError(err).Fatal("文字起こしクライアントの初期化に失敗")
		}
	}

	// 認証サービスを初期化
	authService := service.NewAuthService(cfg)

	// Ginルーターを初期化
	r := gin.Default()

	// NoRouteハンドラー（404）
	r.NoRoute(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("404: ルートが見つかりません")
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	// NoMethodハンドラー（405）
	r.NoMethod(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("405: サポートされていないメソッド")
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// ルートを設定
	routes.SetupRoutes(r, routes.Handlers{
		Auth:       handler.NewAuthHandler(authService, logger.Log),
		Idea:       handler.NewIdeaHandler(ideas, logger.Log),
		Page:       handler.NewPageHandler(pages, logger.Log),
		Document:   handler.NewDocumentHandler(library, logger.Log),
		Todo:       handler.NewTodoHandler(todos, logger.Log),
		Hopper:     handler.NewHopperHandler(hopper, logger.Log),
		Consultant: handler.NewConsultantHandler(consultant, logger.Log),
		Checklist:  handler.NewChecklistHandler(checklist, logger.Log),
		Assistant:  handler.NewAssistantHandler(bridge, transcriber, logger.Log),
	}, authService)

	// グレースフルシャットダウンの設定
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Log.Info("シャットダウンシグナルを受信しました")
		logger.CloseLogger()
		os.Exit(0)
	}()

	// サーバーを起動
	serverAddr := ":" + cfg.Server.Port
	logger.Log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")

	if err := r.Run(serverAddr); err != nil {
		logger.Log.WithError(err).Fatal("サーバーの起動に失敗")
	}
}
