package gauge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseReplyLabeledPercentage(t *testing.T) {
	parsed := parseReply("Float position: near 1/2\nCalculation: midway\nPercentage: 48%\nConfidence: High")

	require.NotNil(t, parsed.Percentage)
	require.Equal(t, 48, *parsed.Percentage)
	require.Equal(t, "High", parsed.Confidence)
	require.Contains(t, parsed.RawOutput, "Float position")
}

func TestParseReplyLabeledRangeUsesUpperBound(t *testing.T) {
	parsed := parseReply("Percentage: 30-35%\nConfidence: Medium")

	require.NotNil(t, parsed.Percentage)
	require.Equal(t, 35, *parsed.Percentage)
	require.Equal(t, "Medium", parsed.Confidence)
}

func TestParseReplyBareRangeFallback(t *testing.T) {
	parsed := parseReply("The float sits between markers, roughly 40-45% of the tube.")

	require.NotNil(t, parsed.Percentage)
	require.Equal(t, 45, *parsed.Percentage)
}

func TestParseReplyBareSingleValueDoesNotMatch(t *testing.T) {
	// A lone number without the label is too ambiguous to trust.
	parsed := parseReply("Reflections cover about 40% of the tube near the top.")

	require.Nil(t, parsed.Percentage)
}

func TestParseReplyNoNumber(t *testing.T) {
	parsed := parseReply("The image is too dark to locate the float.")

	require.Nil(t, parsed.Percentage)
	require.Equal(t, ConfidenceUnknown, parsed.Confidence)
	require.Equal(t, "The image is too dark to locate the float.", parsed.RawOutput)
}

func TestParseReplyRejectsOutOfRange(t *testing.T) {
	parsed := parseReply("Percentage: 250%")
	require.Nil(t, parsed.Percentage)

	parsed = parseReply("Percentage: 90-110%")
	require.Nil(t, parsed.Percentage)
}

func TestParseReplyBoundaryValues(t *testing.T) {
	parsed := parseReply("Percentage: 0%")
	require.NotNil(t, parsed.Percentage)
	require.Equal(t, 0, *parsed.Percentage)

	parsed = parseReply("Percentage: 100%")
	require.NotNil(t, parsed.Percentage)
	require.Equal(t, 100, *parsed.Percentage)
}

func TestParseReplyConfidenceIsFreeForm(t *testing.T) {
	parsed := parseReply("Percentage: 62%\nconfidence: low, glare over the upper tube")

	require.Equal(t, "low, glare over the upper tube", parsed.Confidence)
}

func TestParseReplyConfidenceDefaultsToUnknown(t *testing.T) {
	parsed := parseReply("Percentage: 62%")

	require.Equal(t, ConfidenceUnknown, parsed.Confidence)
}
