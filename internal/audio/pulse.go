// Package audio talks to PulseAudio: output volume for voice commands and
// device discovery for diagnostics.
package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Kind separates capture sources from playback sinks.
type Kind string

const (
	Input  Kind = "input"
	Output Kind = "output"
)

// Device is one Pulse source or sink.
type Device struct {
	Kind        Kind
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
	// Monitor marks an input that records a sink rather than a microphone.
	Monitor   bool
	VolumePct int
}

// port is the part of a Pulse port leya reads.
type port struct {
	name      string
	available uint32
}

func connect() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("leya"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// ListDevices returns every Pulse source followed by every sink.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := connect()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultSink, err := client.DefaultSink()
	if err != nil {
		return nil, fmt.Errorf("read default sink: %w", err)
	}

	var sources pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sources); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	var sinks pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinks); err != nil {
		return nil, fmt.Errorf("list sinks: %w", err)
	}

	devices := make([]Device, 0, len(sources)+len(sinks))
	for _, source := range sources {
		if source != nil {
			devices = append(devices, sourceDevice(source, defaultSource.ID()))
		}
	}
	for _, sink := range sinks {
		if sink != nil {
			devices = append(devices, sinkDevice(sink, defaultSink.ID()))
		}
	}
	return devices, nil
}

func sourceDevice(source *pulseproto.GetSourceInfoReply, defaultID string) Device {
	ports := make([]port, 0, len(source.Ports))
	for _, p := range source.Ports {
		ports = append(ports, port{name: p.Name, available: p.Available})
	}
	return Device{
		Kind:        Input,
		ID:          source.SourceName,
		Description: source.Device,
		State:       deviceState(source.State),
		Available:   activePortAvailable(ports, source.ActivePortName),
		Muted:       source.Mute,
		Default:     source.SourceName == defaultID,
		Monitor:     source.MonitorSourceIndex != pulseproto.Undefined,
		VolumePct:   rawToPercent(averageRaw(source.ChannelVolumes)),
	}
}

func sinkDevice(sink *pulseproto.GetSinkInfoReply, defaultID string) Device {
	ports := make([]port, 0, len(sink.Ports))
	for _, p := range sink.Ports {
		ports = append(ports, port{name: p.Name, available: p.Available})
	}
	return Device{
		Kind:        Output,
		ID:          sink.SinkName,
		Description: sink.Device,
		State:       deviceState(sink.State),
		Available:   activePortAvailable(ports, sink.ActivePortName),
		Muted:       sink.Mute,
		Default:     sink.SinkName == defaultID,
		VolumePct:   rawToPercent(averageRaw(sink.ChannelVolumes)),
	}
}

// DefaultInput returns the default source if it can capture speech.
func DefaultInput(devices []Device) (Device, error) {
	var inputs int
	for _, dev := range devices {
		if dev.Kind != Input {
			continue
		}
		inputs++
		if !dev.Default {
			continue
		}
		switch {
		case dev.Monitor:
			return dev, fmt.Errorf("default input %q records an output, not a microphone", dev.ID)
		case !dev.Available:
			return dev, fmt.Errorf("default input %q is not available", dev.ID)
		case dev.Muted:
			return dev, fmt.Errorf("default input %q is muted", dev.ID)
		}
		return dev, nil
	}
	if inputs == 0 {
		return Device{}, errors.New("no audio input devices found")
	}
	return Device{}, errors.New("default audio source is unavailable")
}

// deviceState names Pulse's running/idle/suspended states.
func deviceState(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// activePortAvailable reports whether the active port is plugged in. Devices
// without ports, and ports of unknown state, count as available.
func activePortAvailable(ports []port, active string) bool {
	for _, p := range ports {
		if p.name == active {
			// Pulse: unknown=0, no=1, yes=2.
			return p.available != 1
		}
	}
	return true
}
