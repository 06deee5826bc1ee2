package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pulsecut/pulsecut/internal/types"
)

// fakeFFmpeg writes a stub ffmpeg binary that logs each invocation's args,
// one line per call, and fails whenever the args match failPattern.
func fakeFFmpeg(t *testing.T, failPattern string) (bin, argsLog string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script stub binary")
	}
	dir := t.TempDir()
	argsLog = filepath.Join(dir, "args.log")
	bin = filepath.Join(dir, "ffmpeg")

	script := "#!/bin/sh\necho \"$@\" >> " + argsLog + "\n"
	if failPattern != "" {
		script += "case \"$*\" in *" + failPattern + "*) exit 1;; esac\n"
	}
	script += "exit 0\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin, argsLog
}

func invocations(t *testing.T, argsLog string) []string {
	t.Helper()
	b, err := os.ReadFile(argsLog)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(b)), "\n")
}

func testPlan(caption string) types.ClipPlan {
	return types.ClipPlan{
		Start:           10,
		End:             40,
		Crop:            types.CropRegion{X: 656, Y: 0, Width: 607, Height: 1080},
		CaptionText:     caption,
		CaptionDuration: 3,
	}
}

func TestRenderClipRetriesWithoutCaption(t *testing.T) {
	bin, argsLog := fakeFFmpeg(t, "drawtext")
	a := New(bin, "", zerolog.Nop())

	out := filepath.Join(t.TempDir(), "clip.mp4")
	if err := a.RenderClip(context.Background(), "in.mp4", testPlan("Big Reveal"), out); err != nil {
		t.Fatalf("retry without caption should succeed, got %v", err)
	}

	calls := invocations(t, argsLog)
	if len(calls) != 2 {
		t.Fatalf("got %d ffmpeg invocations, want 2 (caption then retry)", len(calls))
	}
	if !strings.Contains(calls[0], "drawtext") {
		t.Fatalf("first attempt missing the caption filter: %s", calls[0])
	}
	if strings.Contains(calls[1], "drawtext") {
		t.Fatalf("retry still carries the caption filter: %s", calls[1])
	}
}

func TestRenderClipNoRetryWithoutCaptionText(t *testing.T) {
	bin, argsLog := fakeFFmpeg(t, "crop")
	a := New(bin, "", zerolog.Nop())

	out := filepath.Join(t.TempDir(), "clip.mp4")
	if err := a.RenderClip(context.Background(), "in.mp4", testPlan(""), out); err == nil {
		t.Fatal("captionless render failure must surface the error")
	}

	if calls := invocations(t, argsLog); len(calls) != 1 {
		t.Fatalf("got %d ffmpeg invocations, want 1 (nothing to retry)", len(calls))
	}
}

func TestRenderClipSingleAttemptOnSuccess(t *testing.T) {
	bin, argsLog := fakeFFmpeg(t, "")
	a := New(bin, "", zerolog.Nop())

	out := filepath.Join(t.TempDir(), "clip.mp4")
	if err := a.RenderClip(context.Background(), "in.mp4", testPlan("Big Reveal"), out); err != nil {
		t.Fatal(err)
	}
	if calls := invocations(t, argsLog); len(calls) != 1 {
		t.Fatalf("got %d ffmpeg invocations, want 1", len(calls))
	}
}

func TestFmtSeconds(t *testing.T) {
	tests := map[float64]string{
		0:       "0.000",
		12.5:    "12.500",
		601.125: "601.125",
	}
	for in, want := range tests {
		if got := fmtSeconds(in); got != want {
			t.Fatalf("fmtSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeDrawtext(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain text", "plain text"},
		{"50% off: act now", "50\\% off\\: act now"},
		{"it's here", "it\\\\\\'s here"},
	}
	for _, tt := range tests {
		if got := escapeDrawtext(tt.in); got != tt.want {
			t.Fatalf("escapeDrawtext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDrawtextFilter(t *testing.T) {
	f := drawtextFilter("Big Reveal", 3)
	if !strings.HasPrefix(f, "drawtext=text='Big Reveal'") {
		t.Fatalf("unexpected filter prefix: %s", f)
	}
	if !strings.Contains(f, "enable='between(t,0,3.000)'") {
		t.Fatalf("caption window missing from filter: %s", f)
	}
	if !strings.Contains(f, "x=(w-text_w)/2") {
		t.Fatalf("caption not centered: %s", f)
	}
}
