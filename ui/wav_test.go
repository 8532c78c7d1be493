package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jyane/jnes/nes"
)

func TestWAVRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r, err := NewWAVRecorder(path)
	require.NoError(t, err)
	// More than one chunk, the tail is written by Close.
	n := wavChunkLen + 100
	for i := 0; i < n; i++ {
		r.Record(0.5)
	}
	r.Record(2)
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	d := wav.NewDecoder(f)
	require.True(t, d.IsValidFile())
	assert.Equal(t, uint32(nes.SampleRate), d.SampleRate)
	assert.Equal(t, uint16(1), d.NumChans)
	assert.Equal(t, uint16(wavBitDepth), d.BitDepth)

	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, n+1)
	assert.Equal(t, 16383, buf.Data[0])
	assert.Equal(t, 32767, buf.Data[n])
}

func TestWAVRecorderCreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.wav")
	_, err := NewWAVRecorder(path)
	require.Error(t, err)
	assert.Equal(t, "create "+path, err.Error()[:len("create ")+len(path)])
	assert.ErrorIs(t, err, os.ErrNotExist)
}
