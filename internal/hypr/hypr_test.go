package hypr

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryActiveWindowAndFocusedMonitor(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t, `
if [[ "${1:-}" == "-j" && "${2:-}" == "activewindow" ]]; then
  echo '{"address":" 0xabc ","class":" brave-browser ","initialClass":" Brave ","title":" Inbox - Mail "}'
  exit 0
fi
if [[ "${1:-}" == "-j" && "${2:-}" == "monitors" ]]; then
  echo '[{"name":"HDMI-A-1","focused":false},{"name":" DP-1 ","focused":true}]'
  exit 0
fi
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`)

	window, err := QueryActiveWindow(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0xabc", window.Address)
	require.Equal(t, "brave-browser", window.Class)
	require.Equal(t, "Brave", window.InitialClass)
	require.Equal(t, "Inbox - Mail", window.Title)

	monitor, err := QueryFocusedMonitor(context.Background())
	require.NoError(t, err)
	require.Equal(t, "DP-1", monitor)
}

func TestQueryActiveWindowRejectsEmptyAddress(t *testing.T) {
	installHyprctlStub(t, `
if [[ "${1:-}" == "-j" && "${2:-}" == "activewindow" ]]; then
  echo '{"address":"","class":"brave"}'
  exit 0
fi
echo '[]'
`)

	_, err := QueryActiveWindow(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty address")
}

func TestSendShortcutRequiresNonEmptyPayload(t *testing.T) {
	err := SendShortcut(context.Background(), " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-empty payload")
}

func TestNotifyAndDismissUseHyprctlDispatch(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t, `
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`)

	err := Notify(context.Background(), 3, 1200, "", "No entendí, repite por favor")
	require.NoError(t, err)

	err = DismissNotify(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "--quiet dispatch notify 3 1200 rgb(89b4fa) No entendí, repite por favor", lines[0])
	require.Equal(t, "--quiet dispatch dismissnotify", lines[1])
}

func TestSendShortcutReturnsCombinedOutputOnFailure(t *testing.T) {
	installHyprctlStub(t, `
echo 'boom from hyprctl' >&2
exit 1
`)

	err := SendShortcut(context.Background(), "CTRL,V,address:0xabc")
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom from hyprctl")
}

func TestQueryClientsAndFind(t *testing.T) {
	installHyprctlStub(t, `
if [[ "${1:-}" == "-j" && "${2:-}" == "clients" ]]; then
  echo '[{"address":"0x1","class":"kitty","title":"~"},{"address":"0x2","class":" Chromium ","initialClass":"chromium","title":"YouTube - Chromium"}]'
  exit 0
fi
exit 1
`)

	windows, err := QueryClients(context.Background())
	require.NoError(t, err)
	require.Len(t, windows, 2)

	browser, ok := FindByClass(windows, "chromium")
	require.True(t, ok)
	require.Equal(t, "0x2", browser.Address)

	_, ok = FindByClass(windows, "firefox")
	require.False(t, ok)

	byTitle, ok := FindByTitle(windows, "youtube")
	require.True(t, ok)
	require.Equal(t, "0x2", byTitle.Address)

	_, ok = FindByTitle(windows, " ")
	require.False(t, ok)
}

func TestShortcutPayload(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		address string
		want    string
		wantErr string
	}{
		{name: "single modifier", keys: []string{"ctrl", "t"}, address: "0xabc", want: "CTRL,t,address:0xabc"},
		{name: "two modifiers", keys: []string{"ctrl", "shift", "t"}, want: "CTRL SHIFT,t"},
		{name: "named key", keys: []string{"alt", "left"}, want: "ALT,left"},
		{name: "zoom in", keys: []string{"ctrl", "+"}, want: "CTRL,plus"},
		{name: "bare function key", keys: []string{"f5"}, want: ",F5"},
		{name: "escape", keys: []string{"esc"}, address: "0x1", want: ",escape,address:0x1"},
		{name: "no keys", keys: nil, wantErr: "at least one key"},
		{name: "unknown modifier", keys: []string{"hyper", "t"}, wantErr: "unsupported modifier"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Shortcut(tc.keys, tc.address)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestFocusUsesDispatch(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t, `
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`)

	require.NoError(t, Focus(context.Background(), ClassSelector("chromium")))
	require.Error(t, Focus(context.Background(), " "))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "--quiet dispatch focuswindow class:chromium", strings.TrimSpace(string(data)))
}

func installHyprctlStub(t *testing.T, body string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "hyprctl")
	script := "#!/usr/bin/env bash\nset -euo pipefail\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}
