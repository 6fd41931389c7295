package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColorMap(t *testing.T) {
	reply := "Here is the mapping\n" +
		"[example]\n" +
		"happy: #FFFF00 (bright yellow),\n" +
		"Sad: #0000FF (blue),\n" +
		"  excited :  #FF4500 (orange red)\n" +
		"- calm: #00FFFF\n" +
		"2. **Angry**: #FF0000 (red)\n" +
		"neutral: #808080,\n" +
		"note:\n"

	got := ParseColorMap(reply)
	assert.Equal(t, ColorMap{
		"happy":   "#FFFF00",
		"sad":     "#0000FF",
		"excited": "#FF4500",
		"calm":    "#00FFFF",
		"angry":   "#FF0000",
		"neutral": "#808080",
	}, got)
}

func TestParseColorMapSplitsOnFirstColon(t *testing.T) {
	got := ParseColorMap("joy: rgb:255 (warm)")
	assert.Equal(t, "rgb:255", got["joy"])
}

func TestParseColorMapEmpty(t *testing.T) {
	assert.Empty(t, ParseColorMap(""))
	assert.Empty(t, ParseColorMap("no colons anywhere\nat all"))
}

func TestParseColorMapLastValueWins(t *testing.T) {
	got := ParseColorMap("happy: #111111\nhappy: #222222")
	assert.Equal(t, "#222222", got["happy"])
}

func TestInterpretSentiment(t *testing.T) {
	assert.Equal(t, Happy, InterpretSentiment("The sentiment is Positive."))
	assert.Equal(t, Sad, InterpretSentiment("NEGATIVE overall"))
	assert.Equal(t, Neutral, InterpretSentiment("mixed feelings"))
	assert.Equal(t, Happy, InterpretSentiment("not negative, rather positive"))
	assert.Equal(t, Neutral, InterpretSentiment(""))
}

func TestMappingPromptMentionsMoodTwice(t *testing.T) {
	p := mappingPrompt("wistful")
	assert.Contains(t, p, "The user's current mood is 'wistful'.")
	assert.Contains(t, p, "based on the mood 'wistful'")
	assert.Contains(t, p, "neutral: #808080 (gray)")
}
