package sfx

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

const resampleQuality = 4

// Player plays one-shot effects. Gameplay code depends on this rather than
// on a concrete Manager.
type Player interface {
	Play(clip *Clip, volume, pitch float64, position mgl64.Vec3) *Voice
}

// Voice is one pooled playback slot. It is released back to the pool when
// its clip drains or it is stopped.
type Voice struct {
	index    int
	active   bool
	clip     *Clip
	volume   float64
	pitch    float64
	position mgl64.Vec3
	ctrl     *beep.Ctrl
}

func (v *Voice) Active() bool         { return v.active }
func (v *Voice) SetActive(on bool)    { v.active = on }
func (v *Voice) Index() int           { return v.index }
func (v *Voice) Clip() *Clip          { return v.clip }
func (v *Voice) Volume() float64      { return v.volume }
func (v *Voice) Pitch() float64       { return v.pitch }
func (v *Voice) Position() mgl64.Vec3 { return v.position }

// Manager mixes pooled voices into a single stream. Create one at startup,
// hand it to consumers as a Player and Close it at shutdown.
type Manager struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	mixer      *beep.Mixer
	voices     *Pool[*Voice]
	closed     bool
	speakerOn  bool
	log        zerolog.Logger
}

var (
	_ Player        = (*Manager)(nil)
	_ beep.Streamer = (*Manager)(nil)
)

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manager with a fixed number of voices.
func NewManager(sampleRate beep.SampleRate, voices int, opts ...Option) *Manager {
	m := &Manager{
		sampleRate: sampleRate,
		mixer:      &beep.Mixer{},
		voices: NewPool(voices, func(i int) *Voice {
			return &Voice{index: i}
		}),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) SampleRate() beep.SampleRate { return m.sampleRate }

// Play starts clip on a free voice. volume is linear (1 is unchanged, 0 is
// silent); pitch scales playback speed, non-positive values mean 1. It
// returns nil when every voice is busy or the manager is closed.
func (m *Manager) Play(clip *Clip, volume, pitch float64, position mgl64.Vec3) *Voice {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || clip == nil {
		return nil
	}
	v, ok := m.voices.Place()
	if !ok {
		m.log.Debug().Str("clip", clip.Name()).Msg("no free voice")
		return nil
	}
	if pitch <= 0 || math.IsNaN(pitch) {
		pitch = 1
	}
	v.clip = clip
	v.volume = volume
	v.pitch = pitch
	v.position = position

	var s beep.Streamer = clip.streamer()
	ratio := pitch * float64(clip.Format().SampleRate) / float64(m.sampleRate)
	if ratio != 1 {
		s = beep.ResampleRatio(resampleQuality, ratio, s)
	}
	s = gain(s, volume)

	v.ctrl = &beep.Ctrl{Streamer: beep.Seq(s, beep.Callback(func() {
		// runs inside Stream, which already holds m.mu
		v.active = false
	}))}
	m.mixer.Add(v.ctrl)
	return v
}

// Stop cuts a voice short and frees it.
func (m *Manager) Stop(v *Voice) {
	if v == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ctrl != nil {
		v.ctrl.Streamer = nil
	}
	v.active = false
}

// ActiveVoices is the number of voices currently playing.
func (m *Manager) ActiveVoices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voices.ActiveCount()
}

// Stream mixes every playing voice into samples.
func (m *Manager) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}
	return m.mixer.Stream(samples)
}

func (m *Manager) Err() error { return nil }

// OpenSpeaker routes the mixer to the system audio device.
func (m *Manager) OpenSpeaker(buffer time.Duration) error {
	m.mu.Lock()
	if m.speakerOn {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := speaker.Init(m.sampleRate, m.sampleRate.N(buffer)); err != nil {
		return err
	}
	speaker.Play(m)

	m.mu.Lock()
	m.speakerOn = true
	m.mu.Unlock()
	return nil
}

// Close stops all voices. Later Play calls return nil.
func (m *Manager) Close() {
	m.mu.Lock()
	m.mixer.Clear()
	m.voices.DeactivateAll()
	m.closed = true
	speakerOn := m.speakerOn
	m.speakerOn = false
	m.mu.Unlock()

	if speakerOn {
		speaker.Close()
	}
}

// gain applies a linear volume; zero or less is silent.
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 || math.IsNaN(vol) {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
