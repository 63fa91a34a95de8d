// Package pipeline runs one translation job end to end: detect the
// format, extract text, translate it batch by batch, and build the
// output document. Job status is updated at every stage boundary and
// every failure is recorded in the persistent error log, so a client
// polling the job sees either steady progress or a terminal error.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"office-translator/internal/errlog"
	"office-translator/internal/job"
	"office-translator/internal/logger"
	"office-translator/internal/oracle"
	"office-translator/internal/pdf"
	"office-translator/internal/pptx"
	"office-translator/internal/sanitize"
	"office-translator/internal/translator"
	"office-translator/internal/types"
)

// Result is a finished translation: the output document bytes plus what
// the HTTP layer needs to serve them as a download.
type Result struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Pipeline executes translation jobs. Safe for concurrent use; each job
// touches only its own status key and appends to the shared error log.
type Pipeline struct {
	oracle    oracle.Oracle
	store     *job.Store
	errors    *errlog.Log
	batchSize int
}

func New(o oracle.Oracle, store *job.Store, errs *errlog.Log, batchSize int) *Pipeline {
	return &Pipeline{
		oracle:    o,
		store:     store,
		errors:    errs,
		batchSize: batchSize,
	}
}

// Run translates one uploaded document. On error the job status is set
// to error, the failure is appended to the error log, and no partial
// output is returned.
func (p *Pipeline) Run(ctx context.Context, jobID, filename string, data []byte, targetLang string) (*Result, error) {
	logger.Info("translation job started",
		logger.String("jobID", jobID),
		logger.String("filename", filename),
		logger.String("targetLang", targetLang),
		logger.Int("bytes", len(data)))
	p.store.Set(jobID, job.StatusStarting, "job accepted")

	format, err := types.DetectFormat(filename)
	if err != nil {
		return nil, p.fail(jobID, errlog.StageExtract, err)
	}
	lang := oracle.CanonicalLanguage(targetLang)

	p.store.Set(jobID, job.StatusExtracting, "extracting text")
	switch format {
	case types.FormatPPTX:
		return p.runPPTX(ctx, jobID, filename, data, lang)
	case types.FormatPDF:
		return p.runPDF(ctx, jobID, filename, data, lang)
	default:
		return nil, p.fail(jobID, errlog.StageExtract,
			types.NewAppError(types.ErrUnsupportedFormat, "unsupported document format", nil))
	}
}

func (p *Pipeline) runPPTX(ctx context.Context, jobID, filename string, data []byte, lang string) (*Result, error) {
	units, err := pptx.ExtractUnits(data)
	if err != nil {
		return nil, p.fail(jobID, errlog.StageExtract, err)
	}

	p.store.Set(jobID, job.StatusTranslating, "translation started")
	translations, err := translator.TranslateUnits(ctx, p.oracle, units, lang, p.batchSize, func(percent int) {
		p.store.Progress(jobID, percent)
	})
	if err != nil {
		return nil, p.fail(jobID, errlog.StageTranslate, err)
	}

	p.store.Set(jobID, job.StatusGenerating, "rebuilding presentation")
	out, err := pptx.Rewrite(data, units, translations)
	if err != nil {
		return nil, p.fail(jobID, errlog.StageGenerate, err)
	}

	p.store.Set(jobID, job.StatusCompleted, "translation completed")
	logger.Info("translation job completed",
		logger.String("jobID", jobID),
		logger.Int("units", len(units)),
		logger.Int("translated", len(translations)))
	return &Result{
		Data:        out,
		ContentType: types.FormatPPTX.ContentType(),
		Filename:    outputName(filename),
	}, nil
}

func (p *Pipeline) runPDF(ctx context.Context, jobID, filename string, data []byte, lang string) (*Result, error) {
	text, err := pdf.ExtractText(data)
	if err != nil {
		return nil, p.fail(jobID, errlog.StageExtract, err)
	}

	p.store.Set(jobID, job.StatusTranslating, "translation started")
	translated, err := translator.TranslateText(ctx, p.oracle, text, lang)
	if err != nil {
		return nil, p.fail(jobID, errlog.StageTranslate, err)
	}
	p.store.Progress(jobID, 100)

	p.store.Set(jobID, job.StatusGenerating, "generating pdf document")
	out, pages, err := pdf.Generate(sanitize.Sanitize(translated), pdf.A4Geometry())
	if err != nil {
		return nil, p.fail(jobID, errlog.StageGenerate, err)
	}

	p.store.Set(jobID, job.StatusCompleted, "translation completed")
	logger.Info("translation job completed",
		logger.String("jobID", jobID),
		logger.Int("pages", pages))
	return &Result{
		Data:        out,
		ContentType: types.FormatPDF.ContentType(),
		Filename:    outputName(filename),
	}, nil
}

// fail records the failure everywhere a client can look for it: job
// status, the persistent error log, and the application log.
func (p *Pipeline) fail(jobID string, stage errlog.Stage, err error) error {
	message := err.Error()
	details := ""
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
		details = appErr.Details
	}

	logger.Error("translation job failed", err,
		logger.String("jobID", jobID),
		logger.String("stage", string(stage)))
	p.store.Set(jobID, job.StatusError, message)
	if logErr := p.errors.Append(jobID, stage, message, details); logErr != nil {
		logger.Warn("failed to record job error", logger.Err(logErr))
	}
	return err
}

func outputName(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == "/" || base == "" {
		base = "document"
	}
	return "translated_" + base
}
