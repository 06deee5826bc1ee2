package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Settings carries everything a processing job needs. Values come from
// defaults, an optional pulsecut.yaml, and PULSECUT_* environment variables,
// in that order of precedence (later wins).
type Settings struct {
	// Selection.
	MaxClips int           `mapstructure:"max_clips"`
	MinClip  time.Duration `mapstructure:"min_clip"`
	MaxClip  time.Duration `mapstructure:"max_clip"`
	NumPeaks int           `mapstructure:"num_peaks"`
	AspectW  int           `mapstructure:"aspect_w"`
	AspectH  int           `mapstructure:"aspect_h"`

	// Paths.
	OutputDir string `mapstructure:"output_dir"`
	TempDir   string `mapstructure:"temp_dir"`

	// Tools.
	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path"`
	FaceDetBin  string `mapstructure:"facedet_bin"`

	// Collaborator credentials.
	AssemblyAIAPIKey string `mapstructure:"assemblyai_api_key"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	GeminiModel      string `mapstructure:"gemini_model"`

	// Job store. Empty DSN selects the in-memory store.
	JobStoreDSN string `mapstructure:"job_store_dsn"`
}

// Load reads settings from defaults, config file, and environment.
func Load() (Settings, error) {
	v := viper.New()

	v.SetDefault("max_clips", 5)
	v.SetDefault("min_clip", 15*time.Second)
	v.SetDefault("max_clip", 60*time.Second)
	v.SetDefault("num_peaks", 15)
	v.SetDefault("aspect_w", 9)
	v.SetDefault("aspect_h", 16)
	v.SetDefault("output_dir", "outputs")
	v.SetDefault("temp_dir", "temp")
	v.SetDefault("ffmpeg_path", "ffmpeg")
	v.SetDefault("ffprobe_path", "ffprobe")
	v.SetDefault("facedet_bin", "facedet")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("job_store_dsn", "")

	v.SetConfigName("pulsecut")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("PULSECUT")
	v.AutomaticEnv()

	// Credentials commonly live in plain env vars; honor them when the
	// prefixed form is unset.
	if v.GetString("assemblyai_api_key") == "" {
		v.Set("assemblyai_api_key", os.Getenv("ASSEMBLYAI_API_KEY"))
	}
	if v.GetString("gemini_api_key") == "" {
		v.Set("gemini_api_key", os.Getenv("GEMINI_API_KEY"))
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}

// Validate rejects settings no job could run with.
func (s Settings) Validate() error {
	if s.MaxClips <= 0 {
		return fmt.Errorf("max_clips must be > 0")
	}
	if s.MinClip <= 0 {
		return fmt.Errorf("min_clip must be > 0")
	}
	if s.MaxClip <= 0 {
		return fmt.Errorf("max_clip must be > 0")
	}
	if s.MinClip > s.MaxClip {
		return fmt.Errorf("min_clip must be <= max_clip")
	}
	if s.AspectW <= 0 || s.AspectH <= 0 {
		return fmt.Errorf("aspect ratio must be positive")
	}
	return nil
}

// EnsureDirectories creates the output and temp directories.
func (s Settings) EnsureDirectories() error {
	for _, dir := range []string{s.OutputDir, s.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
