package sfx

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

// Clip is a decoded, in-memory sound. Any number of voices can play the
// same clip at once.
type Clip struct {
	name string
	buf  *beep.Buffer
}

// NewClip drains s into memory using format.
func NewClip(name string, format beep.Format, s beep.Streamer) *Clip {
	buf := beep.NewBuffer(format)
	buf.Append(s)
	return &Clip{name: name, buf: buf}
}

func (c *Clip) Name() string { return c.name }

// Len is the clip length in samples.
func (c *Clip) Len() int { return c.buf.Len() }

func (c *Clip) Format() beep.Format { return c.buf.Format() }

func (c *Clip) Duration() time.Duration {
	return c.buf.Format().SampleRate.D(c.buf.Len())
}

func (c *Clip) streamer() beep.StreamSeeker {
	return c.buf.Streamer(0, c.buf.Len())
}

// StereoFormat is 16-bit stereo at sr.
func StereoFormat(sr beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
}

// ThumpClip is a short low sine with a fast decay, used for landings.
func ThumpClip(sr beep.SampleRate) *Clip {
	return NewClip("thump", StereoFormat(sr), &tone{
		rate:     sr,
		freq:     70,
		sweep:    -30,
		decay:    18,
		length:   sr.N(180 * time.Millisecond),
		noiseMix: 0.1,
	})
}

// ScreechClip is filtered noise over a rising saw, used for drift starts.
func ScreechClip(sr beep.SampleRate) *Clip {
	return NewClip("screech", StereoFormat(sr), &tone{
		rate:     sr,
		freq:     900,
		sweep:    400,
		decay:    4,
		length:   sr.N(400 * time.Millisecond),
		noiseMix: 0.6,
		saw:      true,
	})
}

// tone is a single decaying oscillator with an optional noise layer.
type tone struct {
	rate     beep.SampleRate
	freq     float64 // Hz at start
	sweep    float64 // Hz per second
	decay    float64 // amplitude e-folds per second
	length   int
	noiseMix float64
	saw      bool

	pos   int
	phase float64
}

func (g *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.length {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.rate)

		var osc float64
		if g.saw {
			osc = 2 * (g.phase - 0.5)
		} else {
			osc = math.Sin(2 * math.Pi * g.phase)
		}
		noise := rand.Float64()*2 - 1
		val := ((1-g.noiseMix)*osc + g.noiseMix*noise) * math.Exp(-g.decay*t) * 0.8

		samples[i][0] = val
		samples[i][1] = val

		g.phase += (g.freq + g.sweep*t) / float64(g.rate)
		g.phase -= math.Floor(g.phase)
		g.pos++
	}
	return len(samples), true
}

func (g *tone) Err() error { return nil }
