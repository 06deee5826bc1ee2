package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/pulsecut/pulsecut/internal/types"
)

const (
	defaultModel   = "gemini-2.5-flash"
	requestTimeout = 90 * time.Second

	// The prompt carries at most this much transcript text.
	maxTranscriptChars = 50000
)

type Adapter struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Adapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Adapter{client: client, model: model}, nil
}

// FindMoments asks the model for the best clip-worthy moments. The moments
// come back unresolved: each carries a transcript phrase that the aligner
// turns into a timestamp. When the model responds but nothing parses, the
// adapter falls back to deterministic, evenly-spaced transcript snippets so
// the pipeline stays useful.
func (a *Adapter) FindMoments(ctx context.Context, transcript string, numClips int) ([]types.SemanticMoment, error) {
	if numClips <= 0 || strings.TrimSpace(transcript) == "" {
		return nil, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.7)),
	}
	resp, err := a.client.Models.GenerateContent(
		reqCtx,
		a.model,
		[]*genai.Content{genai.NewContentFromText(buildPrompt(transcript, numClips), genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	moments, err := parseMoments(resp.Text())
	if err != nil || len(moments) == 0 {
		return fallbackMoments(transcript, numClips), nil
	}
	if len(moments) > numClips {
		moments = moments[:numClips]
	}
	return moments, nil
}

func buildPrompt(transcript string, numClips int) string {
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars]
	}
	return fmt.Sprintf(`You are an expert content strategist specializing in creating viral short-form video content from long-form videos.

Analyze this video transcript and identify the %d BEST moments that would make engaging 30-60 second clips for TikTok, Instagram Reels, or YouTube Shorts.

For each moment, provide:
1. A catchy headline/hook (max 8 words) that would stop someone from scrolling
2. The key message or insight
3. Why this moment has viral potential
4. A short exact phrase quoted from the transcript to help locate it
5. Emotional appeal (inspiration/humor/shock/education/etc.)

Transcript:
%s

Respond with a JSON array of objects with these fields: headline, key_message, viral_potential, search_phrase, emotional_appeal, estimated_duration

Be specific and actionable. Focus on moments with:
- Strong emotional hooks
- Quotable insights
- Surprising revelations
- Practical wisdom
- Passionate delivery
`, numClips, transcript)
}

// parseMoments extracts the JSON array from the model output, tolerating
// markdown fences and surrounding prose.
func parseMoments(text string) ([]types.SemanticMoment, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, errors.New("empty response")
	}
	start := strings.Index(t, "[")
	end := strings.LastIndex(t, "]")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON array in response")
	}

	var raw []struct {
		Headline          string `json:"headline"`
		KeyMessage        string `json:"key_message"`
		ViralPotential    string `json:"viral_potential"`
		SearchPhrase      string `json:"search_phrase"`
		EmotionalAppeal   string `json:"emotional_appeal"`
		EstimatedDuration int    `json:"estimated_duration"`
	}
	if err := json.Unmarshal([]byte(t[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parse moments: %w", err)
	}

	out := make([]types.SemanticMoment, 0, len(raw))
	for _, m := range raw {
		headline := strings.TrimSpace(m.Headline)
		if headline == "" {
			headline = "Key Moment"
		}
		appeal := strings.TrimSpace(m.EmotionalAppeal)
		if appeal == "" {
			appeal = "educational"
		}
		dur := m.EstimatedDuration
		if dur <= 0 {
			dur = 45
		}
		out = append(out, types.SemanticMoment{
			SearchPhrase:      strings.TrimSpace(m.SearchPhrase),
			Headline:          headline,
			KeyMessage:        strings.TrimSpace(m.KeyMessage),
			ViralPotential:    strings.TrimSpace(m.ViralPotential),
			EmotionalAppeal:   appeal,
			EstimatedDuration: dur,
			AISelected:        true,
		})
	}
	return out, nil
}

// fallbackMoments spreads placeholder moments across the transcript by
// quoting evenly-spaced snippets; alignment then lands them evenly across
// the timeline.
func fallbackMoments(transcript string, numClips int) []types.SemanticMoment {
	words := strings.Fields(transcript)
	if len(words) == 0 {
		return nil
	}

	const snippetWords = 6
	out := make([]types.SemanticMoment, 0, numClips)
	for i := 0; i < numClips; i++ {
		at := len(words) * (i + 1) / (numClips + 1)
		if at >= len(words) {
			at = len(words) - 1
		}
		end := at + snippetWords
		if end > len(words) {
			end = len(words)
		}
		out = append(out, types.SemanticMoment{
			SearchPhrase:      strings.Join(words[at:end], " "),
			Headline:          fmt.Sprintf("Key Moment %d", i+1),
			KeyMessage:        "Important insight from this section",
			ViralPotential:    "Educational content",
			EmotionalAppeal:   "informative",
			EstimatedDuration: 45,
			AISelected:        false,
		})
	}
	return out
}
