// Package pptx extracts translatable text runs from PowerPoint files and
// writes translated runs back. A pptx file is a zip archive of XML parts;
// only slide parts are touched and every other part is copied through
// byte for byte, so themes, media and layout survive the round trip.
package pptx

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	"office-translator/internal/logger"
	"office-translator/internal/sanitize"
	"office-translator/internal/types"
)

// slidePartRe matches slide parts like "ppt/slides/slide12.xml". Notes,
// masters and layouts deliberately do not match.
var slidePartRe = regexp.MustCompile(`^ppt/slides/slide[0-9]+\.xml$`)

// textRunRe matches one <a:t> element and captures its raw text. Run text
// never contains child elements, so [^<]* is exact.
var textRunRe = regexp.MustCompile(`<a:t(?:\s[^>]*)?>([^<]*)</a:t>`)

var xmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// ExtractUnits walks the slide parts in archive order and returns one unit
// per non-empty text run, with ids assigned densely from 0. The locator
// records the part name and the run's position among all runs of that
// part, so whitespace-only runs are skipped without disturbing the
// addressing.
func ExtractUnits(data []byte) ([]types.TextUnit, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "file is not a valid pptx archive", err)
	}

	var units []types.TextUnit
	id := 0
	slides := 0
	for _, f := range zr.File {
		if !slidePartRe.MatchString(f.Name) {
			continue
		}
		slides++

		content, err := readPart(f)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrExtraction, "failed to read slide part", f.Name, err)
		}

		for occ, m := range textRunRe.FindAllStringSubmatchIndex(content, -1) {
			text := xmlUnescaper.Replace(content[m[2]:m[3]])
			if strings.TrimSpace(text) == "" {
				continue
			}
			units = append(units, types.TextUnit{
				ID:   id,
				Text: text,
				Loc:  types.Locator{Part: f.Name, Occurrence: occ},
			})
			id++
		}
	}

	if len(units) == 0 {
		return nil, types.NewAppError(types.ErrExtraction, "no translatable text found in presentation", nil)
	}

	logger.Debug("extracted pptx text units",
		logger.Int("slides", slides),
		logger.Int("units", len(units)))
	return units, nil
}

// Rewrite produces a new pptx archive with translated run text. Units
// without a translation fall back to their original text through the same
// sanitize and escape path, and parts containing no text units are copied
// through with their compressed bytes untouched.
func Rewrite(data []byte, units []types.TextUnit, translations types.TranslationMap) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewAppError(types.ErrGeneration, "file is not a valid pptx archive", err)
	}

	// part name -> run occurrence -> replacement text, already sanitized
	// and escaped for inclusion in element content.
	repl := make(map[string]map[int]string)
	for _, u := range units {
		text, ok := translations[u.ID]
		if !ok {
			text = u.Text
		}
		byOcc := repl[u.Loc.Part]
		if byOcc == nil {
			byOcc = make(map[int]string)
			repl[u.Loc.Part] = byOcc
		}
		byOcc[u.Loc.Occurrence] = xmlEscaper.Replace(sanitize.Sanitize(text))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	rewritten := 0
	for _, f := range zr.File {
		byOcc := repl[f.Name]
		if len(byOcc) == 0 {
			if err := zw.Copy(f); err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrGeneration, "failed to copy archive part", f.Name, err)
			}
			continue
		}

		content, err := readPart(f)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrGeneration, "failed to read slide part", f.Name, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrGeneration, "failed to create archive part", f.Name, err)
		}
		if _, err := w.Write([]byte(rewritePart(content, byOcc))); err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrGeneration, "failed to write slide part", f.Name, err)
		}
		rewritten++
	}
	if err := zw.Close(); err != nil {
		return nil, types.NewAppError(types.ErrGeneration, "failed to finalize pptx archive", err)
	}

	logger.Debug("rewrote pptx archive",
		logger.Int("parts", len(zr.File)),
		logger.Int("rewrittenParts", rewritten))
	return buf.Bytes(), nil
}

// rewritePart splices replacement text into the runs named by occurrence
// index, leaving every other byte of the part as it was.
func rewritePart(content string, byOcc map[int]string) string {
	matches := textRunRe.FindAllStringSubmatchIndex(content, -1)

	var b strings.Builder
	last := 0
	for occ, m := range matches {
		text, ok := byOcc[occ]
		if !ok {
			continue
		}
		b.WriteString(content[last:m[2]])
		b.WriteString(text)
		last = m[3]
	}
	b.WriteString(content[last:])
	return b.String()
}

func readPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
