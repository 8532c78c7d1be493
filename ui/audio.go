package ui

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/jyane/jnes/nes"
)

// volume scales the mixer output, which peaks near 1.0.
const volume = 0.25

type audio struct {
	stream  *portaudio.Stream
	channel chan float32
}

func newAudio() *audio {
	a := &audio{}
	// Stereo, about 100ms of samples.
	a.channel = make(chan float32, 2*nes.SampleRate/10)
	return a
}

func (a *audio) start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	cb := func(out []float32) {
		for i := range out {
			select {
			case x := <-a.channel:
				out[i] = x * volume
			default:
				out[i] = 0
			}
		}
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, nes.SampleRate, 0, cb)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open audio stream: %w", err)
	}
	a.stream = stream
	if err := stream.Start(); err != nil {
		a.terminate()
		return fmt.Errorf("start audio stream: %w", err)
	}
	return nil
}

func (a *audio) terminate() {
	a.stream.Close()
	portaudio.Terminate()
}
