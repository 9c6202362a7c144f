package prompt

import "strings"

const (
	fallbackTags         = "Cinematic, 100 BPM"
	fallbackNegativeTags = "harsh, distorted, chaotic, muddy, robotic"

	maxTagLineLength = 120
)

// extractTags pulls the style descriptor line out of a generated brief. The
// model is instructed to put "Genre, Mood, Instrument, Vocal, BPM" right
// under the first [Section] header; the first comma-separated line within
// two lines of that header wins. Falls back to a safe default.
func extractTags(brief string) string {
	lines := strings.Split(brief, "\n")

	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "[") {
			continue
		}
		for j := i + 1; j < len(lines) && j < i+3; j++ {
			candidate := strings.TrimSpace(lines[j])
			if candidate != "" && strings.Contains(candidate, ",") && len(candidate) < maxTagLineLength {
				return candidate
			}
		}
		break
	}

	return fallbackTags
}
