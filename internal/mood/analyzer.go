package mood

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mood-canvas/internal/checkout"
	"mood-canvas/internal/logger"
	"mood-canvas/internal/palette"
)

const (
	sentimentSystemPrompt = "Determine the sentiment of the following text. " +
		"Answer positive, negative or neutral and suggest HTML color codes."
	visionSystemPrompt = "Analyze the sentiment of the following image."
	visionUserPrompt   = "What is the sentiment conveyed in this image?"
)

// Resolution is the outcome of the mood stage.
type Resolution struct {
	Color     palette.Color
	Factor    float64
	Sentiment string
	Mapping   ColorMap
	// Fallback is set when the color came from palette.Fallback.
	Fallback bool
}

type Analyzer struct {
	client      Completer
	model       string
	visionModel string
	logger      logger.Logger
	now         func() time.Time
}

func NewAnalyzer(client Completer, model, visionModel string, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Analyzer{
		client:      client,
		model:       model,
		visionModel: visionModel,
		logger:      log,
		now:         time.Now,
	}
}

// SetClock replaces the time source used for the datetime factor.
func (a *Analyzer) SetClock(now func() time.Time) {
	a.now = now
}

// EmotionColorMap asks the model for an emotion-to-color list built around
// the user's mood.
func (a *Analyzer) EmotionColorMap(ctx context.Context, userMood string) (ColorMap, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: mappingPrompt(userMood)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("emotion color mapping: %w", err)
	}

	text, err := firstContent(resp)
	if err != nil {
		a.logger.Warning("MoodAnalyzer", "mapping reply had no choices", nil)
		return ColorMap{}, nil
	}

	mapping := ParseColorMap(text)
	a.logger.Debug("MoodAnalyzer", "emotion color mapping parsed", map[string]interface{}{
		"entries": len(mapping),
	})
	return mapping, nil
}

// Sentiment classifies the mood text as Happy, Sad or Neutral.
func (a *Analyzer) Sentiment(ctx context.Context, userMood string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sentimentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMood},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sentiment: %w", err)
	}

	text, err := firstContent(resp)
	if err != nil {
		return "", fmt.Errorf("sentiment: %w", err)
	}
	return InterpretSentiment(text), nil
}

// Resolve runs the mood stage. Any failure talking to the model degrades to
// palette.Fallback with the default datetime factor.
func (a *Analyzer) Resolve(ctx context.Context, userMood, checkoutTime string) Resolution {
	fallback := Resolution{
		Color:     palette.Fallback,
		Factor:    checkout.DefaultFactor,
		Sentiment: Neutral,
		Fallback:  true,
	}

	mapping, err := a.EmotionColorMap(ctx, userMood)
	if err != nil {
		a.logger.Error("MoodAnalyzer", err, nil)
		return fallback
	}

	factor := checkout.FactorOrDefault(checkoutTime, a.now(), a.logger)

	sentiment, err := a.Sentiment(ctx, userMood)
	if err != nil {
		a.logger.Error("MoodAnalyzer", err, nil)
		fallback.Mapping = mapping
		return fallback
	}

	res := Resolution{
		Color:     palette.Fallback,
		Factor:    factor,
		Sentiment: sentiment,
		Mapping:   mapping,
		Fallback:  true,
	}

	raw, ok := mapping[sentiment]
	if !ok {
		a.logger.Warning("MoodAnalyzer", "sentiment missing from mapping", map[string]interface{}{
			"sentiment": sentiment,
		})
		return res
	}

	c, err := palette.ParseHex(raw)
	if err != nil {
		a.logger.Warning("MoodAnalyzer", "mapped color is not a hex code", map[string]interface{}{
			"sentiment": sentiment,
			"value":     raw,
		})
		return res
	}

	res.Color = c
	res.Fallback = false
	return res
}

// DescribeImage asks the vision model what sentiment an image conveys.
func (a *Analyzer) DescribeImage(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: visionSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
					},
				},
			},
			{Role: openai.ChatMessageRoleUser, Content: visionUserPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}

	text, err := firstContent(resp)
	if err != nil {
		return "", fmt.Errorf("describe image: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(text)), nil
}
