package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCueSamplesPresent(t *testing.T) {
	for _, kind := range []cueKind{cueListen, cueExecuted, cueSuggest, cueNoMatch} {
		require.NotEmpty(t, cueSamples(kind), kind)
	}
	require.Empty(t, cueSamples(cueKind(99)))
}

func TestSynthesizeCueInsertsGaps(t *testing.T) {
	tones := cueTones[cueListen]
	want := samplesForDuration(tones[0].duration) + samplesForDuration(cueGap) + samplesForDuration(tones[1].duration)
	pcm := synthesizeCue(tones)
	require.Len(t, pcm, want)

	gapStart := samplesForDuration(tones[0].duration)
	for _, s := range pcm[gapStart : gapStart+samplesForDuration(cueGap)] {
		require.Zero(t, s)
	}
}

func TestSynthesizeToneDurationAndEnvelope(t *testing.T) {
	got := synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0.2})
	require.Len(t, got, samplesForDuration(100*time.Millisecond))
	require.Zero(t, got[0])
	require.Zero(t, got[len(got)-1])

	peak := int16(0)
	for _, s := range got {
		peak = max(peak, s)
	}
	require.InDelta(t, 0.2*32767, float64(peak), 200)
}

func TestSynthesizeToneInvalidSpecReturnsEmpty(t *testing.T) {
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 0, duration: 100 * time.Millisecond, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 0, volume: 0.2}))
	require.Empty(t, synthesizeTone(toneSpec{frequencyHz: 440, duration: 100 * time.Millisecond, volume: 0}))
}

func TestSamplesForDuration(t *testing.T) {
	require.Equal(t, 0, samplesForDuration(0))
	require.Equal(t, 400, samplesForDuration(25*time.Millisecond))
}
