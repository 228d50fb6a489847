package dispatch

import "context"

type ActionKind string

const (
	ActionLaunchBrowser   ActionKind = "launch_browser"
	ActionShortcut        ActionKind = "shortcut"
	ActionOpenURL         ActionKind = "open_url"
	ActionSearch          ActionKind = "search"
	ActionScroll          ActionKind = "scroll"
	ActionScreenshot      ActionKind = "screenshot"
	ActionSetVolume       ActionKind = "set_volume"
	ActionChangeVolume    ActionKind = "change_volume"
	ActionVideoFullscreen ActionKind = "video_fullscreen"
	ActionFocusWindow     ActionKind = "focus_window"
	ActionCreateCommand   ActionKind = "create_command"
)

// Action is a side effect requested by a command. Only the fields that belong
// to Kind are set.
type Action struct {
	Kind ActionKind

	// Keys for ActionShortcut, modifiers first.
	Keys []string
	// Amount for ActionScroll; negative scrolls up.
	Amount int
	// URL for ActionOpenURL.
	URL string
	// Query for ActionSearch.
	Query string
	// Level for ActionSetVolume, in percent.
	Level int
	// Delta for ActionChangeVolume, in percent.
	Delta int
	// Title fragment for ActionFocusWindow.
	Title string
}

// Executor performs actions on the desktop. A non-empty message replaces the
// command's default spoken acknowledgement.
type Executor interface {
	Execute(ctx context.Context, action Action) (string, error)
	CurrentURL(ctx context.Context) (string, error)
}

// Builtin binds a fixed phrase to an action and its acknowledgement.
type Builtin struct {
	Phrase  string
	Action  Action
	Message string
}

func shortcut(keys ...string) Action {
	return Action{Kind: ActionShortcut, Keys: keys}
}

// Builtins returns the recognizable built-in commands in registry order.
func Builtins() []Builtin {
	return []Builtin{
		{Phrase: "abrir chrome", Action: Action{Kind: ActionLaunchBrowser}, Message: "Abriendo el navegador"},
		{Phrase: "nueva pestaña", Action: shortcut("ctrl", "t"), Message: "Nueva pestaña"},
		{Phrase: "cerrar pestaña", Action: shortcut("ctrl", "w"), Message: "Pestaña cerrada"},
		{Phrase: "reabrir pestaña", Action: shortcut("ctrl", "shift", "t"), Message: "Pestaña restaurada"},
		{Phrase: "volver", Action: shortcut("alt", "left"), Message: "Volviendo atrás"},
		{Phrase: "adelante", Action: shortcut("alt", "right"), Message: "Avanzando"},
		{Phrase: "recargar", Action: shortcut("f5"), Message: "Recargando"},
		{Phrase: "pantalla completa", Action: shortcut("f11"), Message: "Alternando pantalla completa"},
		{Phrase: "acercar pantalla", Action: shortcut("ctrl", "+"), Message: "Acercando"},
		{Phrase: "alejar pantalla", Action: shortcut("ctrl", "-"), Message: "Alejando"},
		{Phrase: "captura de pantalla", Action: Action{Kind: ActionScreenshot}, Message: "Captura de pantalla guardada"},
		{Phrase: "sube un poco", Action: Action{Kind: ActionScroll, Amount: -300}, Message: "Subiendo un poco"},
		{Phrase: "baja un poco", Action: Action{Kind: ActionScroll, Amount: 300}, Message: "Bajando un poco"},
		{Phrase: "crear comando", Action: Action{Kind: ActionCreateCommand}},
	}
}

// BuiltinPhrases returns the phrases of Builtins in order.
func BuiltinPhrases() []string {
	builtins := Builtins()
	out := make([]string, len(builtins))
	for i, b := range builtins {
		out[i] = b.Phrase
	}
	return out
}

// extras are matched directly but never offered as suggestions.
func extras(volumeStep int) []Builtin {
	videoOn := Action{Kind: ActionVideoFullscreen}
	videoOff := shortcut("esc")
	up := Action{Kind: ActionChangeVolume, Delta: volumeStep}
	down := Action{Kind: ActionChangeVolume, Delta: -volumeStep}
	return []Builtin{
		{Phrase: "video pantalla completa", Action: videoOn, Message: "Video pantalla completa"},
		{Phrase: "pantalla completa video", Action: videoOn, Message: "Video pantalla completa"},
		{Phrase: "expandir video", Action: videoOn, Message: "Video pantalla completa"},
		{Phrase: "cerrar pantalla completa", Action: videoOff, Message: "Saliendo de pantalla completa"},
		{Phrase: "salir video pantalla completa", Action: videoOff, Message: "Saliendo de pantalla completa"},
		{Phrase: "escapar video", Action: videoOff, Message: "Saliendo de pantalla completa"},
		{Phrase: "sube volumen", Action: up, Message: "Subiendo volumen"},
		{Phrase: "más volumen", Action: up, Message: "Subiendo volumen"},
		{Phrase: "aumentar volumen", Action: up, Message: "Subiendo volumen"},
		{Phrase: "baja volumen", Action: down, Message: "Bajando volumen"},
		{Phrase: "menos volumen", Action: down, Message: "Bajando volumen"},
		{Phrase: "disminuir volumen", Action: down, Message: "Bajando volumen"},
	}
}
