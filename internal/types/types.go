// Package types defines core data types and enums for the office document translator.
package types

import (
	"path/filepath"
	"strings"
)

// Config holds the application configuration persisted to disk.
type Config struct {
	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"` // Base URL of an OpenAI-compatible API
	OpenAIModel   string `json:"openai_model"`
	ListenAddr    string `json:"listen_addr"`
	BatchSize     int    `json:"batch_size"`        // max text units per translation batch
	TargetLang    string `json:"target_lang"`       // default target language for requests
	JobRetention  int    `json:"job_retention_min"` // minutes a finished job stays queryable
	DataDir       string `json:"data_dir"`          // error records and other runtime state
}

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// ContentType returns the MIME type used when serving a translated document.
func (f Format) ContentType() string {
	if f == FormatPPTX {
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	return "application/pdf"
}

// DetectFormat decides the document format from the file name suffix.
// Anything that is not .pdf or .pptx is unsupported.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".pptx":
		return FormatPPTX, nil
	default:
		return "", NewAppErrorWithDetails(ErrUnsupportedFormat,
			"unsupported document format", filename, nil)
	}
}

// Locator addresses the source position of a text unit inside its container:
// the part (archive entry) it came from and the index of its text-run match
// within that part. Reassembly resolves units by locator, never by replaying
// a second traversal.
type Locator struct {
	Part       string `json:"part"`
	Occurrence int    `json:"occurrence"`
}

// TextUnit is one atomic piece of translatable text. IDs are zero-based,
// dense, and assigned in discovery order; reassembly consumes translations
// by id.
type TextUnit struct {
	ID   int     `json:"id"`
	Text string  `json:"text"`
	Loc  Locator `json:"loc"`
}

// TranslationMap maps a text unit id to its translated text. The map is
// sparse: ids whose response lines could not be parsed are absent, and the
// reassembler falls back to the unit's original text for them.
type TranslationMap map[int]string

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrExtraction        ErrorCode = "EXTRACTION_ERROR"
	ErrOracle            ErrorCode = "ORACLE_ERROR"
	ErrTranslation       ErrorCode = "TRANSLATION_ERROR"
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	ErrGeneration        ErrorCode = "GENERATION_ERROR"
	ErrConfig            ErrorCode = "CONFIG_ERROR"
)

// AppError is the application error type carried through the pipeline.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the error code of err if it is (or wraps) an AppError,
// or ErrGeneration otherwise.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if ae, ok := err.(*AppError); ok {
			return ae.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrGeneration
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
