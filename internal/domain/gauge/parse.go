package gauge

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	labeledPercent = regexp.MustCompile(`Percentage:\s*(\d+)(?:-(\d+))?%`)
	rangePercent   = regexp.MustCompile(`(\d+)-(\d+)%`)
	confidenceLine = regexp.MustCompile(`(?i)Confidence:\s*([^\n]+)`)
)

// parseReply extracts the structured fields from a model reply. Replies
// without a usable percentage come back with a nil Percentage and the raw
// text preserved; they are never treated as errors.
func parseReply(raw string) ParsedReading {
	parsed := ParsedReading{
		Confidence: ConfidenceUnknown,
		RawOutput:  raw,
	}

	if m := confidenceLine.FindStringSubmatch(raw); m != nil {
		if c := strings.TrimSpace(m[1]); c != "" {
			parsed.Confidence = c
		}
	}

	parsed.Percentage = extractPercentage(raw)
	return parsed
}

// extractPercentage prefers the labeled "Percentage: X%" line and falls back
// to a bare range such as "30-35%" anywhere in the text. Ranges resolve to
// their upper bound. Values outside [0, 100] are rejected rather than
// clamped so a misread cannot masquerade as a valid level.
func extractPercentage(raw string) *int {
	if m := labeledPercent.FindStringSubmatch(raw); m != nil {
		return boundedPercent(pickUpper(m[1], m[2]))
	}
	if m := rangePercent.FindStringSubmatch(raw); m != nil {
		return boundedPercent(pickUpper(m[1], m[2]))
	}
	return nil
}

func pickUpper(single, upper string) string {
	if upper != "" {
		return upper
	}
	return single
}

func boundedPercent(value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > 100 {
		return nil
	}
	return &n
}
