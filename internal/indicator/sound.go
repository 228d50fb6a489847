package indicator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"
)

type cueKind int

const (
	cueListen cueKind = iota + 1
	cueExecuted
	cueSuggest
	cueNoMatch
)

const (
	cueSampleRate = 16000
	cueGap        = 22 * time.Millisecond
	// cueRamp caps the fade in and out that keeps tones from clicking.
	cueRamp = 5 * time.Millisecond
)

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

// Rising for the wake word, a steady pair while a suggestion waits for
// "confirmo", falling when nothing matched.
var cueTones = map[cueKind][]toneSpec{
	cueListen: {
		{frequencyHz: 880, duration: 70 * time.Millisecond, volume: 0.18},
		{frequencyHz: 1175, duration: 70 * time.Millisecond, volume: 0.18},
	},
	cueExecuted: {
		{frequencyHz: 740, duration: 65 * time.Millisecond, volume: 0.18},
		{frequencyHz: 988, duration: 90 * time.Millisecond, volume: 0.18},
	},
	cueSuggest: {
		{frequencyHz: 660, duration: 90 * time.Millisecond, volume: 0.16},
		{frequencyHz: 660, duration: 90 * time.Millisecond, volume: 0.16},
	},
	cueNoMatch: {
		{frequencyHz: 480, duration: 75 * time.Millisecond, volume: 0.18},
		{frequencyHz: 360, duration: 90 * time.Millisecond, volume: 0.18},
	},
}

var cuePCM = sync.OnceValue(func() map[cueKind][]int16 {
	pcm := make(map[cueKind][]int16, len(cueTones))
	for kind, tones := range cueTones {
		pcm[kind] = synthesizeCue(tones)
	}
	return pcm
})

func cueSamples(kind cueKind) []int16 {
	return cuePCM()[kind]
}

// playPulse plays mono 16 kHz samples on the default PulseAudio sink and
// returns once they have drained.
func playPulse(samples []int16) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("leya"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	remaining := samples
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		n := copy(buf, remaining)
		remaining = remaining[n:]
		if len(remaining) == 0 {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("leya cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue: %w", err)
	}
	return nil
}

// synthesizeCue joins tones with a short silence between each pair.
func synthesizeCue(tones []toneSpec) []int16 {
	var pcm []int16
	for i, spec := range tones {
		if i > 0 {
			pcm = append(pcm, make([]int16, samplesForDuration(cueGap))...)
		}
		pcm = append(pcm, synthesizeTone(spec)...)
	}
	return pcm
}

func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	ramp := max(1, min(n/10, samplesForDuration(cueRamp)))
	pcm := make([]int16, n)
	for i := range pcm {
		edge := min(i, n-1-i)
		envelope := min(1, float64(edge)/float64(ramp))
		phase := 2 * math.Pi * spec.frequencyHz * float64(i) / cueSampleRate
		pcm[i] = int16(math.Round(math.Sin(phase) * spec.volume * envelope * math.MaxInt16))
	}
	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
