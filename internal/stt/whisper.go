// Package stt wraps the whisper.cpp transcriber behind the file-path
// contract the pipeline uses.
package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"codevox/internal/audio"
)

// Result is one finished transcription.
type Result struct {
	Text     string
	Language string // detected, or the forced language
}

// Transcriber owns a loaded whisper model. One model serves all workers;
// each call gets a fresh whisper context.
type Transcriber struct {
	model whisper.Model
}

func NewTranscriber(modelPath string) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &Transcriber{model: m}, nil
}

func (t *Transcriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}

// TranscribeFile decodes an audio file and runs it through the model.
// Language "auto" lets whisper pick; threads <= 0 uses every CPU.
func (t *Transcriber) TranscribeFile(ctx context.Context, path, language string, threads int) (Result, error) {
	pcm, err := audio.DecodeFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("decode audio: %w", err)
	}
	return t.TranscribePCM(ctx, pcm, language, threads)
}

// TranscribePCM transcribes mono float32 samples at the capture rate.
func (t *Transcriber) TranscribePCM(ctx context.Context, pcm []float32, language string, threads int) (Result, error) {
	if t.model == nil {
		return Result{}, errors.New("nil model")
	}
	if len(pcm) == 0 {
		return Result{}, errors.New("no audio samples provided")
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("new context: %w", err)
	}

	if language == "" {
		language = "auto"
	}
	if err := wctx.SetLanguage(language); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("next segment: %w", err)
		}
		parts = append(parts, s.Text)
	}

	lang := wctx.DetectedLanguage()
	if lang == "" {
		lang = wctx.Language()
	}

	return Result{
		Text:     strings.Join(parts, " "),
		Language: lang,
	}, nil
}
