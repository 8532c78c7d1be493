package ui

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jyane/jnes/nes"
)

const (
	wavBitDepth = 16
	// wavPCM is the WAVE format tag of integer PCM.
	wavPCM      = 1
	wavChunkLen = nes.SampleRate / 10
)

// WAVRecorder writes mono APU samples to a 16 bit PCM WAV file.
type WAVRecorder struct {
	file    *os.File
	encoder *wav.Encoder
	buffer  *audio.IntBuffer
	err     error
}

// NewWAVRecorder creates the file at path. Pass Record to nes.WithAudioRecorder.
func NewWAVRecorder(path string) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &WAVRecorder{
		file:    f,
		encoder: wav.NewEncoder(f, nes.SampleRate, wavBitDepth, 1, wavPCM),
		buffer: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: nes.SampleRate},
			Data:           make([]int, 0, wavChunkLen),
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// Record appends a sample in [0, 1]. The first write error is kept and returned by Close.
func (r *WAVRecorder) Record(x float32) {
	if r.err != nil {
		return
	}
	if x > 1 {
		x = 1
	}
	r.buffer.Data = append(r.buffer.Data, int(x*32767))
	if len(r.buffer.Data) == wavChunkLen {
		r.flush()
	}
}

func (r *WAVRecorder) flush() {
	if len(r.buffer.Data) == 0 {
		return
	}
	if err := r.encoder.Write(r.buffer); err != nil {
		r.err = err
	}
	r.buffer.Data = r.buffer.Data[:0]
}

// Close writes the pending samples and the WAV header.
func (r *WAVRecorder) Close() error {
	r.flush()
	if err := r.encoder.Close(); err != nil && r.err == nil {
		r.err = err
	}
	if err := r.file.Close(); err != nil && r.err == nil {
		r.err = err
	}
	return r.err
}
