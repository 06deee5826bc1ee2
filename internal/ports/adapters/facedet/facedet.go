// Package facedet shells out to an external face-detection helper. The
// helper samples frames across a time window and reports face-center
// positions as JSON on stdout.
package facedet

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/pulsecut/pulsecut/internal/types"
)

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "facedet"
	}
	return &Adapter{bin: binPath}
}

// SampleFaces runs the detector over [start, start+duration), sampling every
// stride frames. An empty position list is a normal outcome (no faces found);
// only a failed or unparseable run is an error.
func (a *Adapter) SampleFaces(ctx context.Context, inVideo string, start, duration float64, stride int) ([]types.FacePosition, error) {
	if stride <= 0 {
		stride = 5
	}
	cmd := exec.CommandContext(ctx, a.bin,
		"-i", inVideo,
		"-start", strconv.FormatFloat(start, 'f', 3, 64),
		"-duration", strconv.FormatFloat(duration, 'f', 3, 64),
		"-stride", strconv.Itoa(stride),
		"-json",
	)
	b, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("facedet: %w", err)
	}

	var out struct {
		Positions []types.FacePosition `json:"positions"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("facedet: parse output: %w", err)
	}
	return out.Positions, nil
}
