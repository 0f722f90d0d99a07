package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gordonklaus/portaudio"
)

// Recorder keeps the most recent output for the scope.
type Recorder struct {
	lk       sync.Mutex
	buf      [][2]float64
	position int

	sub beep.Streamer
}

func NewRecorder(sub beep.Streamer, size int) *Recorder {
	return &Recorder{
		buf: make([][2]float64, size),
		sub: sub,
	}
}

func (r *Recorder) Stream(samples [][2]float64) (int, bool) {
	n, ok := r.sub.Stream(samples)

	// TryLock: the audio side drops a snapshot rather than wait on the scope
	if !r.lk.TryLock() {
		return n, ok
	}
	defer r.lk.Unlock()

	for i := range samples[:n] {
		ix := r.position % len(r.buf)
		r.buf[ix] = samples[i]
		r.position++
	}
	return n, ok
}

func (r *Recorder) GetSnapshot(buf [][2]float64) int {
	r.lk.Lock()
	defer r.lk.Unlock()

	lim := len(buf)
	if len(r.buf) < lim {
		lim = len(r.buf)
	}

	// oldest sample first
	start := r.position + len(r.buf) - lim
	for i := 0; i < lim; i++ {
		buf[i] = r.buf[(start+i)%len(r.buf)]
	}

	return lim
}

func (r *Recorder) Err() error {
	return r.sub.Err()
}

// startAudio starts pulling src through the configured transport. The
// returned function stops it.
func startAudio(cfg *Config, src beep.Streamer) (func(), error) {
	switch cfg.Backend {
	case "speaker", "":
		return startSpeaker(cfg, src)
	case "portaudio":
		return startPortAudio(cfg, src)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", cfg.Backend)
	}
}

func startSpeaker(cfg *Config, src beep.Streamer) (func(), error) {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(cfg.Latency)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}
	speaker.Play(src)
	logger.Info("audio started", "backend", "speaker", "rate", cfg.SampleRate, "latency", cfg.Latency)
	return speaker.Close, nil
}

// startPortAudio opens a stereo output whose callback asks for one block per
// call, which is the transport the voice was designed around.
func startPortAudio(cfg *Config, src beep.Streamer) (func(), error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	frames := make([][2]float64, cfg.BlockSize)
	callback := func(out [][]float32) {
		if len(out) < 2 || len(out[0]) == 0 {
			// nowhere to put a block, skip it
			return
		}
		left, right := out[0], out[1]
		for off := 0; off < len(left); off += len(frames) {
			n := min(len(frames), len(left)-off)
			src.Stream(frames[:n])
			for i := 0; i < n; i++ {
				left[off+i] = float32(frames[i][0])
				right[off+i] = float32(frames[i][1])
			}
		}
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(cfg.SampleRate), cfg.BlockSize, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("opening portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("starting portaudio stream: %w", err)
	}
	logger.Info("audio started", "backend", "portaudio", "rate", cfg.SampleRate, "block", cfg.BlockSize)

	return func() {
		if err := stream.Stop(); err != nil {
			logger.Warn("stopping portaudio stream", "err", err)
		}
		stream.Close()
		portaudio.Terminate()
	}, nil
}

// defaultLatency is the speaker buffer when none is configured.
const defaultLatency = time.Second / 20

// listAudioDevices logs the portaudio devices that can take output.
func listAudioDevices() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devs, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("listing audio devices: %w", err)
	}
	for _, d := range devs {
		if d.MaxOutputChannels == 0 {
			continue
		}
		logger.Info("audio device",
			"name", d.Name,
			"api", d.HostApi.Name,
			"channels", d.MaxOutputChannels,
			"rate", d.DefaultSampleRate,
			"latency", d.DefaultLowOutputLatency,
		)
	}
	return nil
}
