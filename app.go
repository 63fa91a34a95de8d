package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"office-translator/internal/config"
	"office-translator/internal/errlog"
	"office-translator/internal/job"
	"office-translator/internal/logger"
	"office-translator/internal/oracle"
	"office-translator/internal/pipeline"
	"office-translator/internal/types"
)

// maxUploadBytes caps document uploads.
const maxUploadBytes = 100 << 20

// App is the translation service controller. It wires configuration, the
// oracle client, job tracking, the persistent error log and the pipeline
// behind the HTTP surface.
type App struct {
	config *config.ConfigManager
	store  *job.Store
	errors *errlog.Log
	pipe   *pipeline.Pipeline
}

// NewApp loads configuration and connects all modules.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.NewConfigManager(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Load(); err != nil {
		return nil, err
	}

	chat, err := oracle.NewChatOracle(ctx, cfg.GetAPIKey(), cfg.GetBaseURL(), cfg.GetModel())
	if err != nil {
		return nil, err
	}

	errs, err := errlog.New(cfg.GetDataDir())
	if err != nil {
		return nil, err
	}

	store := job.NewStore(time.Duration(cfg.GetJobRetention())*time.Minute, nil)
	return &App{
		config: cfg,
		store:  store,
		errors: errs,
		pipe:   pipeline.New(chat, store, errs, cfg.GetBatchSize()),
	}, nil
}

// newAppWithPipeline assembles an App around an existing pipeline. Used
// by tests to substitute the oracle.
func newAppWithPipeline(cfg *config.ConfigManager, store *job.Store, errs *errlog.Log, pipe *pipeline.Pipeline) *App {
	return &App{config: cfg, store: store, errors: errs, pipe: pipe}
}

// Router builds the HTTP surface:
//
//	POST /translate  multipart upload, returns the translated document
//	GET  /status/:id current job status
//	GET  /errors     persistent error log
//	GET  /healthz    liveness probe
func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = maxUploadBytes

	router.POST("/translate", a.handleTranslate)
	router.GET("/status/:id", a.handleStatus)
	router.GET("/errors", a.handleErrors)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

// handleTranslate accepts a multipart upload and runs the translation
// synchronously: the response body is the translated document. Clients
// that pass their own job_id can watch progress on /status/:id from a
// second connection while this one blocks.
func (a *App) handleTranslate(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	targetLang := c.PostForm("target_lang")
	if targetLang == "" {
		targetLang = a.config.GetTargetLang()
	}
	jobID := c.PostForm("job_id")
	if jobID == "" {
		jobID = fmt.Sprintf("job_%d", time.Now().UnixMilli())
	}

	// A started job runs to completion even if the client goes away; status
	// stays pollable on /status/:id either way.
	res, err := a.pipe.Run(context.WithoutCancel(c.Request.Context()), jobID, fileHeader.Filename, data, targetLang)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": errorMessage(err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Header("X-Job-ID", jobID)
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

func (a *App) handleStatus(c *gin.Context) {
	rec := a.store.Get(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"status":  string(rec.Status),
		"message": rec.Message,
	})
}

func (a *App) handleErrors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"errors": a.errors.List()})
}

// TranslateFile runs one translation without the HTTP server: read the
// document, translate it, write the result. An empty outPath places the
// output next to the input under the usual translated_ prefix.
func (a *App) TranslateFile(ctx context.Context, path, outPath, targetLang string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	if targetLang == "" {
		targetLang = a.config.GetTargetLang()
	}

	jobID := fmt.Sprintf("job_%d", time.Now().UnixMilli())
	res, err := a.pipe.Run(ctx, jobID, filepath.Base(path), data, targetLang)
	if err != nil {
		return "", err
	}

	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(path), res.Filename)
	}
	if err := os.WriteFile(outPath, res.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return outPath, nil
}

// statusForError maps pipeline failures to HTTP codes: problems with the
// uploaded document are the client's fault, everything else is ours.
func statusForError(err error) int {
	if types.IsCode(err, types.ErrUnsupportedFormat) || types.IsCode(err, types.ErrExtraction) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorMessage(err error) string {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully.
func (a *App) Serve(addr string) error {
	if addr == "" {
		addr = a.config.GetListenAddr()
	}

	srv := &http.Server{
		Addr:        addr,
		Handler:     a.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
