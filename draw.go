package main

import (
	"context"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	screenWidth  = 1000
	screenHeight = 600

	scopeSamples  = 2048
	scopeShown    = 500
	spectrumShown = 200

	ledRadius = 20
)

// keyNotes lays a piano over the home row of the scope window, starting at
// middle C. z and x shift it by an octave.
var keyNotes = map[sdl.Keycode]int{
	sdl.K_a: 60,
	sdl.K_w: 61,
	sdl.K_s: 62,
	sdl.K_e: 63,
	sdl.K_d: 64,
	sdl.K_f: 65,
	sdl.K_t: 66,
	sdl.K_g: 67,
	sdl.K_y: 68,
	sdl.K_h: 69,
	sdl.K_u: 70,
	sdl.K_j: 71,
	sdl.K_k: 72,
	sdl.K_l: 74,
}

// runScope opens the scope window and blocks until it is closed or ctx ends.
// It must be called from the main goroutine.
func runScope(ctx context.Context, rec *Recorder, synth *Eris, keys *KeyStack) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initializing sdl: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("eris", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, screenWidth, screenHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer renderer.Destroy()

	buf := make([][2]float64, scopeSamples)
	dataPoints := make([]float64, len(buf))
	keystates := make(map[sdl.Keycode]bool)

	var octaveAdjust int
	var frame int
	for ctx.Err() == nil {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				sym := event.Keysym.Sym
				note, isNote := keyNotes[sym]
				note += octaveAdjust

				switch event.Type {
				case sdl.KEYDOWN:
					if keystates[sym] {
						continue
					}
					keystates[sym] = true
					if isNote {
						keys.Press(note, 100)
					}
				case sdl.KEYUP:
					if !keystates[sym] {
						continue
					}
					delete(keystates, sym)
					switch {
					case isNote:
						keys.Lift(note)
					case sym == sdl.K_z:
						octaveAdjust -= 12
					case sym == sdl.K_x:
						octaveAdjust += 12
					case sym == sdl.K_SPACE:
						keys.Reset()
					}
				}
			}
		}

		n := rec.GetSnapshot(buf)
		for i, v := range buf[:n] {
			dataPoints[i] = v[0]
		}
		mags := magnitudeSpectrum(dataPoints[:n])

		renderer.SetDrawColor(255, 255, 255, 255)
		renderer.Clear()

		graphData(renderer, dataPoints[:scopeShown], 50, 50, 600, 200, -1, 1)
		if len(mags) > spectrumShown {
			graphData(renderer, mags[:spectrumShown], 50, 300, 600, 200, 0, 0.25)
		}

		car, mod := synth.Activity()
		drawLED(renderer, 800, 150, ledLevel(car))
		drawLED(renderer, 880, 150, ledLevel(mod))

		renderer.Present()

		frame++
		if frame%30 == 0 && len(mags) > 1 {
			peak := binFreq(peakBin(mags), n, synth.SampleRate())
			window.SetTitle(fmt.Sprintf("eris  %s  peak %.0fHz", synth.EnvState(), peak))
		}

		sdl.Delay(16)
	}
	return nil
}

func graphData(renderer *sdl.Renderer, dataPoints []float64, x, y, width, height int32, minval, maxval float64) {
	if len(dataPoints) < 2 {
		return
	}

	// axes
	renderer.SetDrawColor(0, 0, 0, 255)
	renderer.DrawLine(x, y+height/2, x+width, y+height/2)
	renderer.DrawLine(x, y, x, y+height)

	spread := maxval - minval
	ypos := func(v float64) int32 {
		v = clamp(v, minval, maxval)
		return y + height - int32((v-minval)*float64(height)/spread)
	}

	renderer.SetDrawColor(255, 0, 0, 255)
	for i := 0; i < len(dataPoints)-1; i++ {
		x1 := x + int32(float64(i)*float64(width)/float64(len(dataPoints)-1))
		x2 := x + int32(float64(i+1)*float64(width)/float64(len(dataPoints)-1))
		renderer.DrawLine(x1, ypos(dataPoints[i]), x2, ypos(dataPoints[i+1]))
	}
}

func drawLED(renderer *sdl.Renderer, cx, cy int32, level uint8) {
	renderer.SetDrawColor(200, 200, 200, 255)
	renderer.DrawRect(&sdl.Rect{X: cx - ledRadius - 2, Y: cy - ledRadius - 2, W: 2*ledRadius + 4, H: 2*ledRadius + 4})

	renderer.SetDrawColor(level, 0, 0, 255)
	for dy := int32(-ledRadius); dy <= ledRadius; dy++ {
		for dx := int32(-ledRadius); dx <= ledRadius; dx++ {
			if dx*dx+dy*dy <= ledRadius*ledRadius {
				renderer.DrawPoint(cx+dx, cy+dy)
			}
		}
	}
}
