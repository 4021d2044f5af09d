// Package speech turns reply text into audible output through a cancellable
// background playback task.
package speech

import (
	"context"
	"encoding/binary"
	"io"
	"sync"

	log "log/slog"
)

// Synthesizer streams synthesized speech audio (s16le mono PCM) for text.
type Synthesizer interface {
	Stream(ctx context.Context, text string) (io.ReadCloser, error)
}

// Device is one open audio output handle, held by exactly one playback task.
type Device interface {
	Write(pcm []byte) error
	Close() error
}

// OpenDevice opens the output device for one playback task.
type OpenDevice func() (Device, error)

const (
	chunkSize = 256

	// silenceThreshold gates encoder startup silence: chunks are withheld
	// until one carries a peak int16 amplitude above this (~1% full scale).
	silenceThreshold = 327
)

// Manager runs at most one playback task at a time. Speak fully stops any
// previous task before starting the next, so two tasks can never hold the
// output device concurrently.
type Manager struct {
	synth Synthesizer
	open  OpenDevice

	mu     sync.Mutex
	cancel chan struct{} // closed to stop the active task
	done   chan struct{} // closed by the task on exit
}

func NewManager(synth Synthesizer, open OpenDevice) *Manager {
	return &Manager{synth: synth, open: open}
}

// Speak starts playback of text on a background task.
func (m *Manager) Speak(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()

	cancel := make(chan struct{})
	done := make(chan struct{})
	m.cancel, m.done = cancel, done
	go m.play(text, cancel, done)
}

// Stop cancels the active playback and blocks until its task has exited and
// released the output device. Idempotent when idle.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.done == nil {
		return
	}
	select {
	case <-m.cancel:
	default:
		close(m.cancel)
	}
	<-m.done
	m.cancel, m.done = nil, nil
}

// play is the playback task body. The device is closed on every exit path.
func (m *Manager) play(text string, cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() {
		select {
		case <-cancel:
			stop()
		case <-ctx.Done():
		}
	}()

	dev, err := m.open()
	if err != nil {
		log.Error("Failed to open audio output", "err", err)
		return
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Error("Failed to close audio output", "err", err)
		}
	}()

	stream, err := m.synth.Stream(ctx, text)
	if err != nil {
		log.Error("Failed to synthesize speech", "err", err)
		return
	}
	defer stream.Close()

	var started bool
	buf := make([]byte, chunkSize)
	for {
		select {
		case <-cancel:
			return
		default:
		}

		n, rerr := stream.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if !started && peakAmplitude(chunk) > silenceThreshold {
				started = true
			}
			if started {
				if werr := dev.Write(chunk); werr != nil {
					log.Error("Failed to write audio output", "err", werr)
					return
				}
			}
		}
		if rerr == io.EOF {
			return
		}
		if rerr != nil {
			log.Error("Speech stream failed", "err", rerr)
			return
		}
	}
}

// peakAmplitude returns the largest absolute s16le sample in chunk.
func peakAmplitude(chunk []byte) int {
	peak := 0
	for i := 0; i+1 < len(chunk); i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(chunk[i:])))
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
