package speech

import (
	"encoding/binary"
	"fmt"

	log "log/slog"

	"github.com/gordonklaus/portaudio"
)

const (
	outputSampleRate = 24000
	framesPerWrite   = 128 // one 256-byte pcm chunk
)

// PortAudioDevice is the default output stream, s16 mono at the synthesis
// rate.
type PortAudioDevice struct {
	stream *portaudio.Stream
	buf    []int16
	fill   int
}

// OpenPortAudio opens and starts the default output stream. It satisfies
// OpenDevice.
func OpenPortAudio() (Device, error) {
	buf := make([]int16, framesPerWrite)
	stream, err := portaudio.OpenDefaultStream(0, 1, outputSampleRate, len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start output stream: %w", err)
	}
	return &PortAudioDevice{stream: stream, buf: buf}, nil
}

// Write queues s16le bytes, flushing full frames to the stream.
func (d *PortAudioDevice) Write(pcm []byte) error {
	for i := 0; i+1 < len(pcm); i += 2 {
		d.buf[d.fill] = int16(binary.LittleEndian.Uint16(pcm[i:]))
		d.fill++
		if d.fill == len(d.buf) {
			d.fill = 0
			if err := d.stream.Write(); err != nil {
				return fmt.Errorf("write output stream: %w", err)
			}
		}
	}
	return nil
}

// Close flushes the trailing partial frame padded with silence, then tears
// the stream down.
func (d *PortAudioDevice) Close() error {
	if d.fill > 0 {
		for i := d.fill; i < len(d.buf); i++ {
			d.buf[i] = 0
		}
		d.fill = 0
		if err := d.stream.Write(); err != nil {
			log.Debug("Failed to flush output stream", "err", err)
		}
	}
	if err := d.stream.Stop(); err != nil {
		d.stream.Close()
		return fmt.Errorf("stop output stream: %w", err)
	}
	if err := d.stream.Close(); err != nil {
		return fmt.Errorf("close output stream: %w", err)
	}
	return nil
}
