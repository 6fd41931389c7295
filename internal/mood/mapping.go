package mood

import (
	"fmt"
	"strings"
)

// Sentiment labels double as keys into the emotion-color mapping.
const (
	Happy   = "happy"
	Sad     = "sad"
	Neutral = "neutral"
)

// ColorMap maps lower-cased emotion names to the raw color token the model
// returned. Values are not validated here.
type ColorMap map[string]string

func mappingPrompt(userMood string) string {
	return fmt.Sprintf("The user's current mood is '%s'. Based on this, "+
		"create a detailed mapping of emotions to specific colors, "+
		"considering how colors can influence mood and perception. "+
		"The mapping should be in a clear, list format. "+
		"For example:\n"+
		"[example]\n"+
		"happy: #FFFF00 (bright yellow),\n"+
		"sad: #0000FF (blue),\n"+
		"excited: #FF4500 (orange red),\n"+
		"angry: #FF0000 (red),\n"+
		"calm: #00FFFF (cyan),\n"+
		"neutral: #808080 (gray)\n"+
		"[/example]\n"+
		"Now, based on the mood '%s', provide a similar mapping.", userMood, userMood)
}

// ParseColorMap reads "emotion: #RRGGBB (name)" lines. Lines without a colon
// or without a value are skipped; a repeated emotion keeps its last value.
func ParseColorMap(text string) ColorMap {
	out := make(ColorMap)
	for _, line := range strings.Split(text, "\n") {
		key, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		key = normaliseKey(key)
		fields := strings.Fields(rest)
		if key == "" || len(fields) == 0 {
			continue
		}

		out[key] = strings.TrimRight(fields[0], ",;.")
	}
	return out
}

// normaliseKey drops list bullets, numbering and markdown emphasis.
func normaliseKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•0123456789.) ")
	s = strings.Trim(s, "*_` ")
	return strings.ToLower(s)
}

// InterpretSentiment folds a free-text classification into Happy, Sad or
// Neutral. "positive" wins over "negative" when both appear.
func InterpretSentiment(reply string) string {
	reply = strings.ToLower(reply)
	switch {
	case strings.Contains(reply, "positive"):
		return Happy
	case strings.Contains(reply, "negative"):
		return Sad
	default:
		return Neutral
	}
}
