package indicator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rbright/leya/internal/config"
	"github.com/stretchr/testify/require"
)

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Indicator.Enable = true
	cfg.Indicator.SoundEnable = false
	return cfg
}

func TestNotifierHyprSequence(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("ARGS_FILE", argsFile)
	t.Setenv("LANG", "es_ES.UTF-8")
	installStub(t, "hyprctl", `
printf '%s\n' "$*" >> "${ARGS_FILE}"
`)

	cfg := quietConfig()
	cfg.ActiveWindowMS = 30000

	notify := New(cfg, nil)
	notify.ShowListening(context.Background())
	notify.ShowPrompt(context.Background(), "¿Quisiste decir volver? Di confirmo")
	notify.ShowPrompt(context.Background(), "  ")
	notify.ShowError(context.Background(), "")
	notify.Hide(context.Background())

	require.Equal(t, []string{
		"--quiet dispatch notify 1 30000 rgb(89b4fa) Te escucho…",
		"--quiet dispatch notify 1 4000 rgb(cba6f7) ¿Quisiste decir volver? Di confirmo",
		"--quiet dispatch notify 3 1600 rgb(f38ba8) No pude completar el comando",
		"--quiet dispatch dismissnotify",
	}, readLines(t, argsFile))
}

func TestNotifierErrorTimeoutFallback(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("ARGS_FILE", argsFile)
	installStub(t, "hyprctl", `
printf '%s\n' "$*" >> "${ARGS_FILE}"
`)

	cfg := quietConfig()
	cfg.Indicator.ErrorTimeoutMS = 0

	New(cfg, nil).ShowError(context.Background(), "No encontré esa pestaña")

	require.Equal(t, []string{"--quiet dispatch notify 3 1200 rgb(f38ba8) No encontré esa pestaña"}, readLines(t, argsFile))
}

func TestNotifierDesktopReplacesAndCloses(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "busctl-args.log")
	t.Setenv("ARGS_FILE", argsFile)
	t.Setenv("LANG", "en_US.UTF-8")
	installStub(t, "busctl", `
printf '%s\n' "$*" >> "${ARGS_FILE}"
if [[ "$6" == "Notify" ]]; then
  echo "u 42"
fi
`)

	cfg := quietConfig()
	cfg.Indicator.Backend = "desktop"
	cfg.Indicator.DesktopAppName = "leya-test"

	notify := New(cfg, nil)
	notify.ShowListening(context.Background())
	notify.ShowError(context.Background(), "")
	notify.Hide(context.Background())
	notify.Hide(context.Background())

	const call = "--user call org.freedesktop.Notifications /org/freedesktop/Notifications org.freedesktop.Notifications"
	require.Equal(t, []string{
		call + " Notify susssasa{sv}i leya-test 0 audio-input-microphone Leya Listening… 0 1 urgency y 0 60000",
		call + " Notify susssasa{sv}i leya-test 42 dialog-error Leya Could not complete the command 0 1 urgency y 2 1600",
		call + " CloseNotification u 42",
	}, readLines(t, argsFile))
}

func TestNotificationID(t *testing.T) {
	id, err := notificationID("u 17")
	require.NoError(t, err)
	require.Equal(t, uint32(17), id)

	_, err = notificationID("s oops")
	require.ErrorContains(t, err, "unexpected Notify reply")

	_, err = notificationID("u 99999999999")
	require.Error(t, err)
}

func TestNotifierDisabledSkipsSurface(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("ARGS_FILE", argsFile)
	installStub(t, "hyprctl", `
printf '%s\n' "$*" >> "${ARGS_FILE}"
`)

	cfg := quietConfig()
	cfg.Indicator.Enable = false

	notify := New(cfg, nil)
	notify.ShowListening(context.Background())
	notify.ShowPrompt(context.Background(), "ignored")
	notify.ShowError(context.Background(), "ignored")
	notify.Hide(context.Background())

	_, err := os.Stat(argsFile)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNotifierToleratesSurfaceFailure(t *testing.T) {
	installStub(t, "hyprctl", `
exit 1
`)

	notify := New(quietConfig(), nil)
	notify.ShowListening(context.Background())
	notify.Hide(context.Background())
}

func TestNotifierPlaysCuesInOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Indicator.Enable = false
	cfg.Indicator.SoundEnable = true

	var mu sync.Mutex
	var played [][]int16
	notify := New(cfg, nil)
	notify.play = func(samples []int16) error {
		mu.Lock()
		defer mu.Unlock()
		played = append(played, samples)
		return nil
	}

	notify.CueExecuted(context.Background())
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(played) == 1
	}, time.Second, 5*time.Millisecond)

	notify.CueNoMatch(context.Background())
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(played) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, cueSamples(cueExecuted), played[0])
	require.Equal(t, cueSamples(cueNoMatch), played[1])
}

func TestNotifierSoundDisabledPlaysNothing(t *testing.T) {
	notify := New(quietConfig(), nil)
	notify.play = func([]int16) error {
		t.Error("cue played with sound disabled")
		return nil
	}
	notify.CueSuggest(context.Background())
	notify.CueExecuted(context.Background())
	time.Sleep(20 * time.Millisecond)
}

var _ Controller = (*Notifier)(nil)
var _ Controller = Nop{}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func installStub(t *testing.T, name string, body string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}
