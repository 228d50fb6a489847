package audio

import (
	"context"
	"fmt"
	"math"

	pulseproto "github.com/jfreymuth/pulse/proto"
)

// volumeNorm is PulseAudio's 100% channel volume.
const volumeNorm = 0x10000

// Mixer reads and sets the default output volume in percent.
type Mixer interface {
	Volume(ctx context.Context) (int, error)
	SetVolume(ctx context.Context, percent int) (int, error)
	ChangeVolume(ctx context.Context, deltaPercent int) (int, error)
}

// PulseMixer drives the default Pulse sink.
type PulseMixer struct{}

type sinkState struct {
	index   uint32
	name    string
	volumes pulseproto.ChannelVolumes
}

// Volume returns the default sink's average channel volume.
func (PulseMixer) Volume(ctx context.Context) (int, error) {
	sink, err := defaultSink(ctx)
	if err != nil {
		return 0, err
	}
	return rawToPercent(averageRaw(sink.volumes)), nil
}

// SetVolume sets every channel of the default sink to percent (clamped to
// 0..100) and returns the applied value.
func (PulseMixer) SetVolume(ctx context.Context, percent int) (int, error) {
	sink, err := defaultSink(ctx)
	if err != nil {
		return 0, err
	}
	percent = clampPercent(percent)
	if err := applySinkVolume(sink, percent); err != nil {
		return 0, err
	}
	return percent, nil
}

// ChangeVolume moves the default sink volume by deltaPercent.
func (PulseMixer) ChangeVolume(ctx context.Context, deltaPercent int) (int, error) {
	sink, err := defaultSink(ctx)
	if err != nil {
		return 0, err
	}
	percent := clampPercent(rawToPercent(averageRaw(sink.volumes)) + deltaPercent)
	if err := applySinkVolume(sink, percent); err != nil {
		return 0, err
	}
	return percent, nil
}

func defaultSink(_ context.Context) (sinkState, error) {
	client, err := connect()
	if err != nil {
		return sinkState{}, err
	}
	defer client.Close()

	def, err := client.DefaultSink()
	if err != nil {
		return sinkState{}, fmt.Errorf("read default sink: %w", err)
	}

	var sinks pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinks); err != nil {
		return sinkState{}, fmt.Errorf("list sinks: %w", err)
	}
	for _, sink := range sinks {
		if sink == nil || sink.SinkName != def.ID() {
			continue
		}
		return sinkState{index: sink.SinkIndex, name: sink.SinkName, volumes: sink.ChannelVolumes}, nil
	}
	return sinkState{}, fmt.Errorf("default sink %q not found", def.ID())
}

func applySinkVolume(sink sinkState, percent int) error {
	client, err := connect()
	if err != nil {
		return err
	}
	defer client.Close()

	req := &pulseproto.SetSinkVolume{
		SinkIndex:      sink.index,
		ChannelVolumes: scaledVolumes(len(sink.volumes), percent),
	}
	if err := client.RawRequest(req, nil); err != nil {
		return fmt.Errorf("set volume of sink %q: %w", sink.name, err)
	}
	return nil
}

func scaledVolumes(channels int, percent int) pulseproto.ChannelVolumes {
	if channels <= 0 {
		channels = 2
	}
	raw := percentToRaw(percent)
	out := make(pulseproto.ChannelVolumes, channels)
	for i := range out {
		out[i] = raw
	}
	return out
}

func averageRaw(volumes []uint32) uint32 {
	if len(volumes) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range volumes {
		sum += uint64(v)
	}
	return uint32(sum / uint64(len(volumes)))
}

func percentToRaw(percent int) uint32 {
	return uint32(math.Round(float64(clampPercent(percent)) * volumeNorm / 100))
}

func rawToPercent(raw uint32) int {
	return int(math.Round(float64(raw) * 100 / volumeNorm))
}

func clampPercent(percent int) int {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}
