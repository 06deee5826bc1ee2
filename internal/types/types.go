package types

// Transcript is the full transcription result for one job.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Segment is one timestamped piece of transcript text. Segments are ordered
// by start; overlapping input is tolerated downstream.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// EnergyFrame is one RMS measurement of the analysis timeline.
type EnergyFrame struct {
	Time float64
	RMS  float64
}

// PeakCandidate is an audio-derived moment candidate.
type PeakCandidate struct {
	Timestamp float64 `json:"timestamp"`
	Score     float64 `json:"score"`
	Energy    float64 `json:"energy"`
	Reason    string  `json:"reason"`
}

// SemanticMoment is an LLM-identified moment. It arrives unresolved: the
// model describes where the moment is via a transcript phrase, not a time.
type SemanticMoment struct {
	SearchPhrase      string `json:"search_phrase"`
	Headline          string `json:"headline"`
	KeyMessage        string `json:"key_message"`
	ViralPotential    string `json:"viral_potential"`
	EmotionalAppeal   string `json:"emotional_appeal"`
	EstimatedDuration int    `json:"estimated_duration"`
	AISelected        bool   `json:"ai_selected"`
}

// ResolvedSemanticMoment is a SemanticMoment after transcript alignment.
type ResolvedSemanticMoment struct {
	SemanticMoment
	Timestamp float64 `json:"timestamp"`
}

// Provenance records which signals contributed to a selected moment.
type Provenance string

const (
	ProvenanceAudio         Provenance = "audio"
	ProvenanceAudioSemantic Provenance = "audio+semantic"
)

// FinalMoment is the fusion output consumed by render planning. Within one
// fusion pass no two FinalMoments sit closer than the active spacing floor.
type FinalMoment struct {
	Timestamp         float64    `json:"timestamp"`
	Score             float64    `json:"score"`
	Headline          string     `json:"headline"`
	Reason            string     `json:"reason"`
	EmotionalAppeal   string     `json:"emotional_appeal"`
	EstimatedDuration int        `json:"estimated_duration"`
	Provenance        Provenance `json:"provenance"`
}

// CropRegion is an integer pixel rectangle inside the source frame.
type CropRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ClipPlan is the terminal artifact of the core: everything the renderer
// needs to produce one clip.
type ClipPlan struct {
	Start           float64    `json:"start"`
	End             float64    `json:"end"`
	Crop            CropRegion `json:"crop"`
	CaptionText     string     `json:"caption_text"`
	CaptionDuration float64    `json:"caption_duration"`
}

// ClipResult describes one rendered clip in the job manifest.
type ClipResult struct {
	Index           int     `json:"index"`
	File            string  `json:"file"`
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	Duration        float64 `json:"duration"`
	Headline        string  `json:"headline"`
	EmotionalAppeal string  `json:"emotional_appeal"`
}

// SignalReport records which upstream signals were present for a job so
// operators can diagnose why fewer clips than requested were produced.
type SignalReport struct {
	AudioPeaks         int  `json:"audio_peaks"`
	TranscriptSegments int  `json:"transcript_segments"`
	TranscriptDegraded bool `json:"transcript_degraded"`
	SemanticMoments    int  `json:"semantic_moments"`
	SemanticDegraded   bool `json:"semantic_degraded"`
	MomentsSelected    int  `json:"moments_selected"`
	ClipsRendered      int  `json:"clips_rendered"`
	RenderFailures     int  `json:"render_failures"`
	CropFallbacks      int  `json:"crop_fallbacks"`
}

// Manifest is the job-level output metadata written next to the clips.
type Manifest struct {
	JobID           string                   `json:"job_id"`
	Input           string                   `json:"input"`
	EmotionalPeaks  []PeakCandidate          `json:"emotional_peaks"`
	SemanticMoments []ResolvedSemanticMoment `json:"semantic_moments"`
	SelectedMoments []FinalMoment            `json:"selected_moments"`
	Clips           []ClipResult             `json:"clips"`
	Signals         SignalReport             `json:"signals"`
}

// FacePosition is one sampled face-center position in source pixels.
type FacePosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}
