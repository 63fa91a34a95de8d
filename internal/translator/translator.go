// Package translator turns extracted text units into translated text by
// driving the oracle batch by batch. Batches are sent strictly one after
// another and responses go through a strict line parser, so a partially
// mangled oracle reply degrades to untranslated units instead of
// corrupting the document.
package translator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"office-translator/internal/logger"
	"office-translator/internal/oracle"
	"office-translator/internal/types"
)

// ProgressFunc receives the overall progress in percent after each batch.
type ProgressFunc func(percent int)

// TranslateUnits translates units into targetLang in contiguous batches of
// at most batchSize. Units whose translation the oracle failed to return
// are simply absent from the result; callers fall back to the original
// text. An oracle failure aborts the whole run.
func TranslateUnits(ctx context.Context, o oracle.Oracle, units []types.TextUnit, targetLang string, batchSize int, onProgress ProgressFunc) (types.TranslationMap, error) {
	if len(units) == 0 {
		return types.TranslationMap{}, nil
	}

	batches := SplitBatches(units, batchSize)
	merged := make(types.TranslationMap, len(units))
	system := buildBatchSystemPrompt(targetLang)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, types.NewAppError(types.ErrTranslation, "translation cancelled", err)
		}

		reply, err := o.Complete(ctx, system, buildBatchUserPrompt(batch))
		if err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) {
				appErr.Details = fmt.Sprintf("batch %d/%d: %s", i+1, len(batches), appErr.Details)
				return nil, appErr
			}
			return nil, types.NewAppErrorWithDetails(types.ErrTranslation,
				"batch translation failed",
				fmt.Sprintf("batch %d/%d", i+1, len(batches)), err)
		}

		parsed := ParseBatchResponse(reply, batch)
		for id, text := range parsed.Translations {
			merged[id] = text
		}
		for _, rej := range parsed.Rejected {
			logger.Warn("rejected oracle response line",
				logger.String("reason", rej.Reason),
				logger.String("line", rej.Line),
				logger.Int("batch", i+1))
		}
		logger.Debug("batch translated",
			logger.Int("batch", i+1),
			logger.Int("batches", len(batches)),
			logger.Int("accepted", len(parsed.Translations)),
			logger.Int("rejected", len(parsed.Rejected)))

		if onProgress != nil {
			onProgress(int(math.Round(float64(i+1) / float64(len(batches)) * 100)))
		}
	}

	if missing := len(units) - len(merged); missing > 0 {
		logger.Warn("some units were left untranslated",
			logger.Int("missing", missing),
			logger.Int("total", len(units)))
	}
	return merged, nil
}

// TranslateText translates a whole document text in a single oracle call.
// Used for formats where the text is reflowed into a new document rather
// than written back unit by unit.
func TranslateText(ctx context.Context, o oracle.Oracle, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", types.NewAppError(types.ErrTranslation, "no text to translate", nil)
	}

	reply, err := o.Complete(ctx, buildDocumentSystemPrompt(targetLang), buildDocumentUserPrompt(text, targetLang))
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			return "", appErr
		}
		return "", types.NewAppError(types.ErrTranslation, "document translation failed", err)
	}

	out := strings.TrimSpace(reply)
	if out == "" {
		return "", types.NewAppError(types.ErrTranslation, "translation service returned empty content", nil)
	}
	return out, nil
}

func buildBatchSystemPrompt(targetLang string) string {
	return fmt.Sprintf(`You are a professional translator. Your task is to translate numbered text fragments extracted from a presentation into %s.

CRITICAL RULES:
1. The input contains one fragment per line in the form "[<id>]: <text>".
2. Reply with EXACTLY one line per fragment, in the same "[<id>]: <translation>" form.
3. Keep every id unchanged. Never invent, drop, merge or reorder ids.
4. Translate into formal, professional %s suitable for business documents.
5. Preserve numbers, dates, product names, acronyms and the punctuation style of each fragment.
6. Keep technical terminology in the source language or map it to the accepted formal equivalent in %s.
7. Do not add explanations, notes or any text outside the "[<id>]: ..." lines.`, targetLang, targetLang, targetLang)
}

func buildBatchUserPrompt(batch []types.TextUnit) string {
	return fmt.Sprintf(`Translate the following numbered fragments.

IMPORTANT REMINDERS:
- One "[<id>]: <translation>" line per fragment
- Keep every id exactly as given
- No text outside the numbered lines

Fragments to translate:
%s`, renderBatch(batch))
}

func buildDocumentSystemPrompt(targetLang string) string {
	return fmt.Sprintf(`You are a professional translator specializing in business and technical documents. Your task is to translate the document text provided by the user into %s.

CRITICAL RULES:
1. Translate every sentence into formal, professional %s.
2. Preserve the paragraph structure: keep blank lines between paragraphs exactly where they are.
3. Preserve numbers, dates, product names and acronyms.
4. Keep technical terminology in the source language or map it to the accepted formal equivalent in %s.
5. Do not add any explanations or notes - output only the translated text.`, targetLang, targetLang, targetLang)
}

func buildDocumentUserPrompt(text, targetLang string) string {
	return fmt.Sprintf(`Translate the following document text into %s.

Text to translate:
%s`, targetLang, text)
}
