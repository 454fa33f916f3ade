package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kart-io/naughty-assistant/pkg/utils/httpclient"
)

// imageLabels is the fixed label set; the classifier's class index is
// reduced modulo its length.
var imageLabels = []string{"cat", "dog", "car", "person"}

// Sidecar calls the vision and audio analysis services.
type Sidecar struct {
	visionURL string
	audioURL  string
	client    *httpclient.Client
}

// NewSidecar creates a sidecar client. Requests are not retried.
func NewSidecar(visionURL, audioURL string, timeout time.Duration) *Sidecar {
	return &Sidecar{
		visionURL: strings.TrimRight(visionURL, "/"),
		audioURL:  strings.TrimRight(audioURL, "/"),
		client:    httpclient.NewClient(timeout, 0),
	}
}

type pathRequest struct {
	Path string `json:"path"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	ClassIndex int `json:"class_index"`
}

type audioFeatures struct {
	Duration float64 `json:"duration"`
	NMFCC    int     `json:"n_mfcc"`
	Frames   int     `json:"frames"`
}

// DescribeImage runs OCR and classification on the image at path.
func (s *Sidecar) DescribeImage(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	req := pathRequest{Path: abs}

	var ocr ocrResponse
	if err := s.client.PostJSON(ctx, s.visionURL+"/ocr", req, &ocr); err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	var cls classifyResponse
	if err := s.client.PostJSON(ctx, s.visionURL+"/classify", req, &cls); err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	textOutput := "No text detected in image."
	if ocr.Text != "" {
		head, _ := Truncate(ocr.Text, 100)
		textOutput = "Text in image: " + head
	}

	idx := cls.ClassIndex % len(imageLabels)
	if idx < 0 {
		idx += len(imageLabels)
	}
	return fmt.Sprintf("%s | Detected object: %s", textOutput, imageLabels[idx]), nil
}

// DescribeAudio extracts duration and MFCC matrix shape of the audio at path.
func (s *Sidecar) DescribeAudio(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var f audioFeatures
	if err := s.client.PostJSON(ctx, s.audioURL+"/features", pathRequest{Path: abs}, &f); err != nil {
		return "", fmt.Errorf("audio features: %w", err)
	}
	return fmt.Sprintf("Audio duration: %.2fs | Features detected: (%d, %d)", f.Duration, f.NMFCC, f.Frames), nil
}
