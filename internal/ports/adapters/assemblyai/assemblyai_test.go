package assemblyai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pulsecut/pulsecut/internal/types"
)

func TestSegmentsFromWords(t *testing.T) {
	words := []word{
		{Text: "Hello", Start: 0, End: 400},
		{Text: "everyone.", Start: 450, End: 900},
		{Text: "Today", Start: 1000, End: 1300},
		{Text: "is", Start: 1350, End: 1450},
		{Text: "great", Start: 1500, End: 1900},
	}

	segs := segmentsFromWords(words)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(segs), segs)
	}
	if segs[0].Text != "Hello everyone." {
		t.Fatalf("first segment text = %q", segs[0].Text)
	}
	if segs[0].Start != 0 || segs[0].End != 0.9 {
		t.Fatalf("first segment times = [%v, %v], want [0, 0.9]", segs[0].Start, segs[0].End)
	}
	if segs[1].Text != "Today is great" {
		t.Fatalf("second segment text = %q", segs[1].Text)
	}
	if segs[1].Start != 1.0 || segs[1].End != 1.9 {
		t.Fatalf("second segment times = [%v, %v], want [1.0, 1.9]", segs[1].Start, segs[1].End)
	}
}

func TestSegmentsFromWordsCapsLength(t *testing.T) {
	var words []word
	for i := 0; i < 25; i++ {
		words = append(words, word{Text: "word", Start: i * 100, End: i*100 + 50})
	}
	segs := segmentsFromWords(words)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3 (10+10+5 words)", len(segs))
	}
}

func TestSegmentsFromWordsEmpty(t *testing.T) {
	if got := segmentsFromWords(nil); got != nil {
		t.Fatalf("segmentsFromWords(nil) = %v, want nil", got)
	}
}

func TestTranscribeFullFlow(t *testing.T) {
	completed := transcriptResponse{
		ID:     "tr1",
		Status: "completed",
		Text:   "Hello everyone. Today is great",
		Words: []word{
			{Text: "Hello", Start: 0, End: 400},
			{Text: "everyone.", Start: 450, End: 900},
		},
		LanguageCode: "en",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing auth header on %s", r.URL.Path)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio"})
		case r.Method == http.MethodPost && r.URL.Path == "/transcript":
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad transcript request: %v", err)
			}
			if req["audio_url"] != "https://cdn.example/audio" {
				t.Errorf("audio_url = %v", req["audio_url"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "tr1", "status": "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/transcript/tr1":
			json.NewEncoder(w).Encode(completed)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(wav, []byte("RIFF fake audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := New("test-key", srv.URL)
	got, err := a.Transcribe(context.Background(), wav)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != completed.Text {
		t.Fatalf("text = %q", got.Text)
	}
	if got.Language != "en" {
		t.Fatalf("language = %q, want en", got.Language)
	}
	if len(got.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(got.Segments))
	}
	want := types.Segment{Start: 0, End: 0.9, Text: "Hello everyone."}
	if got.Segments[0] != want {
		t.Fatalf("segment = %+v, want %+v", got.Segments[0], want)
	}
}

func TestTranscribeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio"})
		case r.Method == http.MethodPost && r.URL.Path == "/transcript":
			json.NewEncoder(w).Encode(map[string]string{"id": "tr1"})
		default:
			json.NewEncoder(w).Encode(transcriptResponse{ID: "tr1", Status: "error", Error: "bad audio"})
		}
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(wav, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := New("test-key", srv.URL)
	if _, err := a.Transcribe(context.Background(), wav); err == nil {
		t.Fatal("expected error for failed transcription")
	}
}

func TestTranscribeUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	wav := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(wav, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := New("bad-key", srv.URL)
	if _, err := a.Transcribe(context.Background(), wav); err == nil {
		t.Fatal("expected error for rejected upload")
	}
}
