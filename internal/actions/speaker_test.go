package actions

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/leya/internal/config"
)

func TestSpeakerAppendsText(t *testing.T) {
	script := writeArgsScript(t)
	out := filepath.Join(t.TempDir(), "speak.txt")

	speaker := NewSpeaker(config.CommandConfig{Argv: []string{script, out, "-v", "es"}}, nil)
	require.NoError(t, speaker.Say(context.Background(), "Nueva pestaña"))
	require.Equal(t, "-v es Nueva pestaña", readFile(t, out))
}

func TestSpeakerExpandsPlaceholder(t *testing.T) {
	script := writeArgsScript(t)
	out := filepath.Join(t.TempDir(), "speak.txt")

	speaker := NewSpeaker(config.CommandConfig{Argv: []string{script, out, "--text={text}", "--rate=150"}}, nil)
	require.NoError(t, speaker.Say(context.Background(), "Hasta luego"))
	require.Equal(t, "--text=Hasta luego --rate=150", readFile(t, out))
}

func TestSpeakerNoopAndFailure(t *testing.T) {
	require.NoError(t, NewSpeaker(config.CommandConfig{}, nil).Say(context.Background(), "hola"))
	require.NoError(t, NewSpeaker(config.CommandConfig{Argv: []string{"false"}}, nil).Say(context.Background(), "  "))

	err := NewSpeaker(config.CommandConfig{Argv: []string{writeFailScript(t, "no audio")}}, nil).Say(context.Background(), "hola")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no audio")
}
