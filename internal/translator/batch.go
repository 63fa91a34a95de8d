package translator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"office-translator/internal/types"
)

// Rejection reasons attached to response lines the parser refuses.
const (
	ReasonNoIDPrefix       = "no id prefix"
	ReasonIDOutsideBatch   = "id outside batch"
	ReasonDuplicateID      = "duplicate id"
	ReasonEmptyTranslation = "empty translation"
)

// RejectedLine records one oracle response line that did not survive strict
// parsing, together with the reason it was dropped.
type RejectedLine struct {
	Line   string
	Reason string
}

// BatchParse is the outcome of parsing one batch response. Translations
// holds the accepted id-to-text pairs; Rejected holds everything else so
// callers can log what the oracle mangled.
type BatchParse struct {
	Translations types.TranslationMap
	Rejected     []RejectedLine
}

// lineRe matches the id line protocol: "[<id>]: <text>".
var lineRe = regexp.MustCompile(`^\[(\d+)\]:\s*(.*)$`)

// SplitBatches cuts units into contiguous batches of at most size units,
// preserving order. A size below 1 is treated as 1.
func SplitBatches(units []types.TextUnit, size int) [][]types.TextUnit {
	if size < 1 {
		size = 1
	}
	if len(units) == 0 {
		return nil
	}

	batches := make([][]types.TextUnit, 0, (len(units)+size-1)/size)
	for start := 0; start < len(units); start += size {
		end := start + size
		if end > len(units) {
			end = len(units)
		}
		batches = append(batches, units[start:end])
	}
	return batches
}

// renderBatch writes one unit per line in the "[<id>]: <text>" protocol.
// Newlines inside a unit would break the line protocol, so they are
// flattened to spaces in the rendered prompt only.
func renderBatch(batch []types.TextUnit) string {
	flatten := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

	var b strings.Builder
	for i, u := range batch {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprintf("[%d]: %s", u.ID, flatten.Replace(u.Text)))
	}
	return b.String()
}

// ParseBatchResponse strictly parses one oracle response against the batch
// that produced it. Only lines matching the id protocol, carrying an id
// from this batch, are accepted; the first occurrence of an id wins and
// later duplicates are rejected. Blank lines are ignored without comment.
func ParseBatchResponse(response string, batch []types.TextUnit) BatchParse {
	valid := make(map[int]bool, len(batch))
	for _, u := range batch {
		valid[u.ID] = true
	}

	result := BatchParse{Translations: make(types.TranslationMap, len(batch))}
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			result.Rejected = append(result.Rejected, RejectedLine{Line: line, Reason: ReasonNoIDPrefix})
			continue
		}

		id, err := strconv.Atoi(m[1])
		if err != nil || !valid[id] {
			result.Rejected = append(result.Rejected, RejectedLine{Line: line, Reason: ReasonIDOutsideBatch})
			continue
		}
		if _, seen := result.Translations[id]; seen {
			result.Rejected = append(result.Rejected, RejectedLine{Line: line, Reason: ReasonDuplicateID})
			continue
		}

		text := strings.TrimSpace(m[2])
		if text == "" {
			result.Rejected = append(result.Rejected, RejectedLine{Line: line, Reason: ReasonEmptyTranslation})
			continue
		}
		result.Translations[id] = text
	}
	return result
}
