package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulsecut/pulsecut/internal/ports"
	"github.com/pulsecut/pulsecut/internal/types"
)

// Output scaling for vertical short-form clips.
const outputHeight = 1920

type Adapter struct {
	ffmpeg  string
	ffprobe string
	log     zerolog.Logger
}

func New(ffmpegPath, ffprobePath string, log zerolog.Logger) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, log: log}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inVideo, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) Probe(ctx context.Context, inVideo string) (ports.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		return ports.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := ports.VideoInfo{}
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = dur
	}
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			info.Width = s.Width
			info.Height = s.Height
			break
		}
	}
	if info.Duration <= 0 || info.Width <= 0 || info.Height <= 0 {
		return ports.VideoInfo{}, fmt.Errorf("ffprobe: no usable video stream in %s", inVideo)
	}
	return info, nil
}

// RenderClip cuts the plan's window, applies the crop and vertical scaling,
// and burns the caption. A caption failure must not lose the clip: the render
// is retried once without the drawtext filter.
func (a *Adapter) RenderClip(ctx context.Context, inVideo string, plan types.ClipPlan, outPath string) error {
	err := a.render(ctx, inVideo, plan, outPath, true)
	if err == nil {
		return nil
	}
	if plan.CaptionText == "" {
		return err
	}

	a.log.Warn().Err(err).Str("out", outPath).Msg("caption render failed, retrying without caption")
	return a.render(ctx, inVideo, plan, outPath, false)
}

func (a *Adapter) render(ctx context.Context, inVideo string, plan types.ClipPlan, outPath string, caption bool) error {
	filters := []string{
		fmt.Sprintf("crop=%d:%d:%d:%d", plan.Crop.Width, plan.Crop.Height, plan.Crop.X, plan.Crop.Y),
		fmt.Sprintf("scale=-2:%d", outputHeight),
	}
	if caption && plan.CaptionText != "" {
		filters = append(filters, drawtextFilter(plan.CaptionText, plan.CaptionDuration))
	}

	args := []string{
		"-y",
		"-ss", fmtSeconds(plan.Start),
		"-to", fmtSeconds(plan.End),
		"-i", inVideo,
		"-vf", strings.Join(filters, ","),
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outPath,
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render clip: %w\n%s", err, string(b))
	}
	return nil
}

// drawtextFilter places the caption in the upper portion of the frame for
// its display window.
func drawtextFilter(text string, duration float64) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=60:borderw=3:bordercolor=black:x=(w-text_w)/2:y=100:enable='between(t,0,%s)'",
		escapeDrawtext(text), fmtSeconds(duration),
	)
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

// escapeDrawtext neutralizes characters the drawtext filter parser treats
// specially.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\\\\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "%", "\\%")
	return s
}
