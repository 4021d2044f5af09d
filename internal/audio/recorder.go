// Package audio handles microphone capture and PCM file IO.
package audio

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

// SampleRate is the capture rate the transcriber expects.
const SampleRate = 16000

const (
	frameSize       = 320 // 20ms
	frameDuration   = 20 * time.Millisecond
	calibrationTime = 1 * time.Second
	silenceDuration = 600 * time.Millisecond
	maxUtterance    = 10 * time.Second

	// floor for the derived speech threshold; quiet rooms calibrate lower
	minSpeechRMS = 0.015
)

type Recorder struct{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Record calibrates against ambient noise, then captures one utterance,
// returning once trailing silence or the length cap is reached. Blocks the
// calling worker for the whole capture.
func (r *Recorder) Record() ([]float32, error) {
	buf := make([]float32, frameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start input stream: %w", err)
	}
	defer stream.Stop()

	threshold, err := calibrate(stream, buf)
	if err != nil {
		return nil, err
	}

	out := make([]float32, 0, SampleRate*3)

	var (
		speaking      bool
		silenceFrames int
	)

	maxFrames := int(maxUtterance / frameDuration)
	for i := 0; i < maxFrames; i++ {
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read input stream: %w", err)
		}

		if frameRMS(buf) > threshold {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}
		if !speaking {
			continue
		}
		silenceFrames++
		if time.Duration(silenceFrames)*frameDuration >= silenceDuration {
			break
		}
		out = append(out, buf...)
	}

	if len(out) == 0 {
		return nil, errors.New("no speech captured")
	}
	return out, nil
}

// calibrate samples the ambient noise floor and derives the speech
// threshold from its peak.
func calibrate(stream *portaudio.Stream, buf []float32) (float64, error) {
	var floor float64
	for i := 0; i < int(calibrationTime/frameDuration); i++ {
		if err := stream.Read(); err != nil {
			return 0, fmt.Errorf("read input stream: %w", err)
		}
		if rms := frameRMS(buf); rms > floor {
			floor = rms
		}
	}

	threshold := floor * 2
	if threshold < minSpeechRMS {
		threshold = minSpeechRMS
	}
	return threshold, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
