package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pulsecut/pulsecut/internal/types"
)

const (
	defaultBaseURL = "https://api.assemblyai.com/v2"

	requestTimeout = 90 * time.Second
	pollInterval   = 3 * time.Second
	pollDeadline   = 10 * time.Minute

	// Word grouping: a segment closes on terminal punctuation or after this
	// many words.
	maxWordsPerSegment = 10
)

type Adapter struct {
	key     string
	baseURL string
	client  *http.Client
}

func New(apiKey, baseURL string) *Adapter {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		key:     apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type word struct {
	Text  string `json:"text"`
	Start int    `json:"start"` // ms
	End   int    `json:"end"`   // ms
}

type transcriptResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Text         string `json:"text"`
	Words        []word `json:"words"`
	LanguageCode string `json:"language_code"`
	Error        string `json:"error"`
}

// Transcribe uploads the audio, requests a transcript, and polls until it
// completes. The whole exchange is bounded; callers treat any error as a
// degraded-signal condition, not a fatal one.
func (a *Adapter) Transcribe(ctx context.Context, wavPath string) (types.Transcript, error) {
	uploadURL, err := a.upload(ctx, wavPath)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("assemblyai upload: %w", err)
	}

	id, err := a.requestTranscript(ctx, uploadURL)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("assemblyai request: %w", err)
	}

	data, err := a.poll(ctx, id)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("assemblyai poll: %w", err)
	}

	lang := data.LanguageCode
	if lang == "" {
		lang = "en"
	}
	return types.Transcript{
		Text:     data.Text,
		Segments: segmentsFromWords(data.Words),
		Language: lang,
	}, nil
}

func (a *Adapter) upload(ctx context.Context, wavPath string) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.key)

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", errors.New("empty upload_url")
	}
	return out.UploadURL, nil
}

func (a *Adapter) requestTranscript(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"audio_url":          audioURL,
		"language_detection": true,
		"punctuate":          true,
		"format_text":        true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.key)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("empty transcript id")
	}
	return out.ID, nil
}

func (a *Adapter) poll(ctx context.Context, id string) (transcriptResponse, error) {
	deadline := time.Now().Add(pollDeadline)
	for {
		if time.Now().After(deadline) {
			return transcriptResponse{}, errors.New("transcription timeout")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/transcript/"+id, nil)
		if err != nil {
			return transcriptResponse{}, err
		}
		req.Header.Set("Authorization", a.key)

		var out transcriptResponse
		if err := a.do(req, &out); err != nil {
			return transcriptResponse{}, err
		}

		switch out.Status {
		case "completed":
			return out, nil
		case "error":
			return transcriptResponse{}, fmt.Errorf("transcription error: %s", out.Error)
		}

		select {
		case <-ctx.Done():
			return transcriptResponse{}, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (a *Adapter) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// segmentsFromWords groups word-level timestamps into sentence-like
// segments. AssemblyAI reports times in milliseconds.
func segmentsFromWords(words []word) []types.Segment {
	if len(words) == 0 {
		return nil
	}

	var (
		out   []types.Segment
		parts []string
		start = float64(words[0].Start) / 1000
	)
	for i, w := range words {
		parts = append(parts, w.Text)
		closes := strings.HasSuffix(w.Text, ".") ||
			strings.HasSuffix(w.Text, "!") ||
			strings.HasSuffix(w.Text, "?") ||
			len(parts) >= maxWordsPerSegment
		if !closes && i != len(words)-1 {
			continue
		}
		out = append(out, types.Segment{
			Start: start,
			End:   float64(w.End) / 1000,
			Text:  strings.TrimSpace(strings.Join(parts, " ")),
		})
		parts = parts[:0]
		if i != len(words)-1 {
			start = float64(words[i+1].Start) / 1000
		}
	}
	return out
}
