package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	// gain scales every cue down; output = input * (1 + gain)
	gain = -0.8
)

type Sound int

const (
	SoundHit Sound = iota
	SoundBonus
	SoundMiss
	SoundLifeLost
	SoundGameOver
)

type note struct {
	freq     float64
	duration time.Duration
}

var cues = map[Sound][]note{
	SoundHit:      {{880, 50 * time.Millisecond}},
	SoundBonus:    {{880, 50 * time.Millisecond}, {1320, 80 * time.Millisecond}},
	SoundMiss:     {{180, 120 * time.Millisecond}},
	SoundLifeLost: {{330, 90 * time.Millisecond}, {220, 120 * time.Millisecond}},
	SoundGameOver: {{440, 150 * time.Millisecond}, {330, 150 * time.Millisecond}, {220, 300 * time.Millisecond}},
}

// Player plays short cues. A Player that failed to open the speaker stays silent.
type Player struct {
	lock    sync.Mutex
	enabled bool
	mixer   *beep.Mixer
}

func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}}
}

// Init opens the speaker. Playing without audio is fine, so callers may ignore the error.
func (p *Player) Init() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to init speaker: %v", err)
	}
	speaker.Play(p.mixer)
	p.enabled = true
	return nil
}

func (p *Player) Enabled() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.enabled
}

func (p *Player) Play(s Sound) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.enabled {
		return
	}
	streamer, err := cue(s)
	if err != nil {
		log.Warn("Failed to build sound %d: %v", s, err)
		return
	}
	speaker.Lock()
	p.mixer.Add(streamer)
	speaker.Unlock()
}

func (p *Player) Close() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.enabled {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.enabled = false
}

// cue builds the streamer for a sound: its notes played back to back.
func cue(s Sound) (beep.Streamer, error) {
	notes, ok := cues[s]
	if !ok {
		return nil, fmt.Errorf("unknown sound %d", s)
	}
	streamers := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			return nil, err
		}
		streamers = append(streamers, beep.Take(sampleRate.N(n.duration), tone))
	}
	return &effects.Gain{Streamer: beep.Seq(streamers...), Gain: gain}, nil
}
