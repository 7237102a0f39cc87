// Package audio plays the sound intents emitted by the movement core using
// synthesised generators, so no sound assets are required.
package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"chosenoffset.com/ns2d/internal/intent"
	"chosenoffset.com/ns2d/internal/logger"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound names the manager can synthesise
const (
	JetpackLoop  = "jetpack-loop"
	JetpackStart = "jetpack-start"
	Shot         = "shot"
)

// SoundManager turns sound intents into mixer streams. Every method is a
// no-op until Initialize succeeds.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	loops       map[string]*beep.Ctrl
	initialized bool
}

// NewSoundManager creates an uninitialised manager
func NewSoundManager() *SoundManager {
	return &SoundManager{
		mixer: &beep.Mixer{},
		loops: make(map[string]*beep.Ctrl),
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences everything
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	for _, ctrl := range sm.loops {
		ctrl.Paused = true
	}
	sm.loops = make(map[string]*beep.Ctrl)
	sm.mixer.Clear()
	sm.initialized = false
}

// Emit handles Sound, Loop and StopLoop intents and ignores the rest
func (sm *SoundManager) Emit(i intent.Intent) {
	switch v := i.(type) {
	case intent.Sound:
		sm.Play(v.Name, v.Volume)
	case intent.Loop:
		sm.StartLoop(v.Name, v.Volume)
	case intent.StopLoop:
		sm.StopLoop(v.Name)
	}
}

// Play starts a one-shot sound
func (sm *SoundManager) Play(name string, volume float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	switch name {
	case JetpackStart:
		sm.mixer.Add(beep.Take(sampleRate.N(time.Millisecond*250), NewIgnitionGenerator(sampleRate, volume)))
	case Shot:
		sm.mixer.Add(beep.Take(sampleRate.N(time.Millisecond*120), NewShotGenerator(sampleRate, volume, rand.Int63())))
	default:
		logger.L().Debug("unknown sound", "name", name)
	}
}

// StartLoop starts or resumes a looping sound. Starting a playing loop
// does nothing.
func (sm *SoundManager) StartLoop(name string, volume float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	if ctrl, ok := sm.loops[name]; ok {
		ctrl.Paused = false
		return
	}

	var streamer beep.Streamer
	switch name {
	case JetpackLoop:
		streamer = NewRumbleGenerator(sampleRate, volume, 1)
	default:
		logger.L().Debug("unknown loop", "name", name)
		return
	}

	ctrl := &beep.Ctrl{Streamer: streamer}
	sm.loops[name] = ctrl
	sm.mixer.Add(ctrl)
}

// StopLoop pauses a looping sound
func (sm *SoundManager) StopLoop(name string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if ctrl, ok := sm.loops[name]; ok {
		ctrl.Paused = true
	}
}

// Playing reports whether a loop is currently audible
func (sm *SoundManager) Playing(name string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ctrl, ok := sm.loops[name]
	return ok && !ctrl.Paused
}

// RumbleGenerator is low filtered noise with a slow flutter, endless
type RumbleGenerator struct {
	sr     beep.SampleRate
	volume float64
	rng    *rand.Rand
	pos    int
	last   float64
}

// NewRumbleGenerator creates a jetpack rumble
func NewRumbleGenerator(sr beep.SampleRate, volume float64, seed int64) *RumbleGenerator {
	return &RumbleGenerator{sr: sr, volume: volume, rng: rand.New(rand.NewSource(seed))}
}

func (g *RumbleGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// one-pole low-pass keeps the hiss out
		g.last += 0.08 * (g.rng.Float64()*2 - 1 - g.last)
		flutter := 0.8 + 0.2*math.Sin(2*math.Pi*11*t)
		sample := g.volume * flutter * g.last * 2

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *RumbleGenerator) Err() error {
	return nil
}

// IgnitionGenerator is a short rising whoosh
type IgnitionGenerator struct {
	sr     beep.SampleRate
	volume float64
	pos    int
}

// NewIgnitionGenerator creates a jetpack ignition sound
func NewIgnitionGenerator(sr beep.SampleRate, volume float64) *IgnitionGenerator {
	return &IgnitionGenerator{sr: sr, volume: volume}
}

func (g *IgnitionGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		freq := 90 + 600*t
		envelope := math.Min(t/0.02, 1) * math.Exp(-t*8)
		sample := g.volume * envelope * math.Sin(2*math.Pi*freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *IgnitionGenerator) Err() error {
	return nil
}

// ShotGenerator is a sharp noise crack with a fast decay
type ShotGenerator struct {
	sr     beep.SampleRate
	volume float64
	rng    *rand.Rand
	pos    int
}

// NewShotGenerator creates a weapon report
func NewShotGenerator(sr beep.SampleRate, volume float64, seed int64) *ShotGenerator {
	return &ShotGenerator{sr: sr, volume: volume, rng: rand.New(rand.NewSource(seed))}
}

func (g *ShotGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		envelope := math.Exp(-t * 40)
		sample := g.volume * envelope * (g.rng.Float64()*2 - 1)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ShotGenerator) Err() error {
	return nil
}
