// Package pdf handles both ends of the PDF path: pulling plain text out
// of an uploaded document and producing a new document from translated
// text. Output is a full reflow in a single embedded font; nothing of the
// original page layout is preserved.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"office-translator/internal/logger"
	"office-translator/internal/types"
)

// ExtractText returns the plain text of every page, pages separated by a
// blank line. The underlying parser panics on some malformed files, so
// the panic is converted into an extraction error here.
func ExtractText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = types.NewAppErrorWithDetails(types.ErrExtraction,
				"pdf parsing failed", fmt.Sprint(rec), nil)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", types.NewAppError(types.ErrExtraction, "file is not a valid pdf document", err)
	}

	var pages []string
	total := reader.NumPage()
	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("failed to extract text from page",
				logger.Int("page", pageNum),
				logger.Err(err))
			continue
		}
		if s := strings.TrimSpace(content); s != "" {
			pages = append(pages, s)
		}
	}

	if len(pages) == 0 {
		return "", types.NewAppError(types.ErrExtraction, "no extractable text found in pdf", nil)
	}

	logger.Debug("extracted pdf text",
		logger.Int("pages", total),
		logger.Int("nonEmptyPages", len(pages)))
	return strings.Join(pages, "\n\n"), nil
}
