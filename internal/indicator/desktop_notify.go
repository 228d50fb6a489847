package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

const notificationsBus = "org.freedesktop.Notifications"

// desktopSurface posts freedesktop notifications over the session bus with
// busctl. Each notice replaces the previous one, so leya owns at most one
// notification at a time.
type desktopSurface struct {
	appName string

	mu      sync.Mutex
	current uint32
}

// desktopStyle maps a tone to its icon and urgency hint (0 low, 1 normal,
// 2 critical).
var desktopStyle = map[tone]struct {
	icon    string
	urgency string
}{
	toneListening: {icon: "audio-input-microphone", urgency: "0"},
	tonePrompt:    {icon: "dialog-question", urgency: "1"},
	toneError:     {icon: "dialog-error", urgency: "2"},
}

func newDesktopSurface(appName string) *desktopSurface {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		appName = "leya"
	}
	return &desktopSurface{appName: appName}
}

func (d *desktopSurface) show(ctx context.Context, msg notice) error {
	d.mu.Lock()
	replaces := d.current
	d.mu.Unlock()

	style := desktopStyle[msg.tone]
	reply, err := busctl(ctx, "Notify", "susssasa{sv}i",
		d.appName,
		strconv.FormatUint(uint64(replaces), 10),
		style.icon,
		"Leya",
		msg.text,
		"0",                                // no actions
		"1", "urgency", "y", style.urgency, // one hint
		strconv.Itoa(msg.timeoutMS),
	)
	if err != nil {
		return err
	}
	id, err := notificationID(reply)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.current = id
	d.mu.Unlock()
	return nil
}

func (d *desktopSurface) hide(ctx context.Context) error {
	d.mu.Lock()
	id := d.current
	d.current = 0
	d.mu.Unlock()

	if id == 0 {
		return nil
	}
	_, err := busctl(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10))
	return err
}

// busctl calls method on the notification server and returns its reply.
func busctl(ctx context.Context, method string, signature string, args ...string) (string, error) {
	argv := append([]string{
		"--user", "call",
		notificationsBus, "/org/freedesktop/Notifications", notificationsBus,
		method, signature,
	}, args...)

	out, err := exec.CommandContext(ctx, "busctl", argv...).CombinedOutput()
	reply := strings.TrimSpace(string(out))
	if err != nil {
		if reply == "" {
			return "", fmt.Errorf("busctl %s: %w", method, err)
		}
		return "", fmt.Errorf("busctl %s: %w (%s)", method, err, reply)
	}
	return reply, nil
}

// notificationID reads the "u <id>" reply of Notify.
func notificationID(reply string) (uint32, error) {
	fields := strings.Fields(reply)
	if len(fields) != 2 || fields[0] != "u" {
		return 0, fmt.Errorf("unexpected Notify reply %q", reply)
	}
	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("notification id %q: %w", fields[1], err)
	}
	return uint32(id), nil
}
