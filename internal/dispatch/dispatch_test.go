package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/leya/internal/index"
	"github.com/rbright/leya/internal/lexical"
	"github.com/rbright/leya/internal/registry"
	"github.com/rbright/leya/internal/resolve"
	"github.com/rbright/leya/internal/store"
)

type fakeExec struct {
	actions []Action
	fail    map[ActionKind]error
	url     string
	urlErr  error
}

func (f *fakeExec) Execute(_ context.Context, action Action) (string, error) {
	f.actions = append(f.actions, action)
	if err := f.fail[action.Kind]; err != nil {
		return "", err
	}
	return "", nil
}

func (f *fakeExec) CurrentURL(context.Context) (string, error) {
	return f.url, f.urlErr
}

type scriptConv struct {
	replies []string
	said    []string
}

func (c *scriptConv) Say(_ context.Context, text string) {
	c.said = append(c.said, text)
}

func (c *scriptConv) Listen(context.Context, time.Duration) string {
	if len(c.replies) == 0 {
		return ""
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply
}

type memStore struct {
	records []store.Record
	err     error
}

func (m *memStore) Phrases(context.Context) ([]string, error) {
	out := make([]string, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Phrase)
	}
	return out, m.err
}

func (m *memStore) List(context.Context) ([]store.Record, error) { return m.records, m.err }

func (m *memStore) Insert(_ context.Context, phrase string, url string) (store.Record, error) {
	if m.err != nil {
		return store.Record{}, m.err
	}
	r := store.Record{ID: int64(len(m.records) + 1), Phrase: phrase, URL: url}
	m.records = append(m.records, r)
	return r, nil
}

func (m *memStore) Lookup(_ context.Context, phrase string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	for _, r := range m.records {
		if r.Phrase == phrase {
			return r.URL, true, nil
		}
	}
	return "", false, nil
}

func (m *memStore) Close() error { return nil }

type harness struct {
	dispatcher *Dispatcher
	engine     *resolve.Engine
	exec       *fakeExec
	store      *memStore
}

var testSites = []registry.Site{
	{Name: "youtube", URL: "https://www.youtube.com"},
	{Name: "maps", URL: "https://maps.google.com"},
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	normalizer, err := lexical.New("spanish")
	require.NoError(t, err)

	reg := registry.New(registry.Compose(BuiltinPhrases(), testSites, "confirmo"))
	engine := resolve.New(reg, index.New(normalizer), resolve.DefaultOptions(), nil)
	exec := &fakeExec{fail: map[ActionKind]error{}}
	commands := &memStore{}
	d := New(engine, normalizer, commands, exec, Options{Sites: testSites, VolumeStep: 5, ListenTimeout: time.Second}, nil)
	return &harness{dispatcher: d, engine: engine, exec: exec, store: commands}
}

func (h *harness) handle(t *testing.T, utterance string, replies ...string) (Outcome, *scriptConv) {
	t.Helper()
	conv := &scriptConv{replies: replies}
	out := h.dispatcher.Handle(context.Background(), conv, utterance)
	require.Equal(t, conv.said, out.Prompts)
	return out, conv
}

func TestDirectMatches(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      Action
		prompt    string
	}{
		{name: "builtin shortcut", utterance: "Nueva pestaña", want: Action{Kind: ActionShortcut, Keys: []string{"ctrl", "t"}}, prompt: "Nueva pestaña"},
		{name: "builtin inside sentence", utterance: "por favor, recargar", want: Action{Kind: ActionShortcut, Keys: []string{"f5"}}, prompt: "Recargando"},
		{name: "longest phrase wins", utterance: "cerrar pantalla completa", want: Action{Kind: ActionShortcut, Keys: []string{"esc"}}, prompt: "Saliendo de pantalla completa"},
		{name: "video fullscreen", utterance: "video pantalla completa", want: Action{Kind: ActionVideoFullscreen}, prompt: "Video pantalla completa"},
		{name: "site", utterance: "abrir youtube por favor", want: Action{Kind: ActionOpenURL, URL: "https://www.youtube.com"}, prompt: "Abriendo youtube"},
		{name: "absolute volume", utterance: "sube el volumen a 40", want: Action{Kind: ActionSetVolume, Level: 40}, prompt: "Volumen al 40 por ciento"},
		{name: "relative volume up", utterance: "más volumen", want: Action{Kind: ActionChangeVolume, Delta: 5}, prompt: "Subiendo volumen"},
		{name: "relative volume down", utterance: "baja volumen", want: Action{Kind: ActionChangeVolume, Delta: -5}, prompt: "Bajando volumen"},
		{name: "scroll", utterance: "sube un poco", want: Action{Kind: ActionScroll, Amount: -300}, prompt: "Subiendo un poco"},
		{name: "select window", utterance: "selecciona Bandeja de entrada", want: Action{Kind: ActionFocusWindow, Title: "bandeja de entrada"}, prompt: "Seleccionando bandeja de entrada"},
		{name: "search", utterance: "buscar recetas de pasta", want: Action{Kind: ActionSearch, Query: "recetas de pasta"}, prompt: "Buscando recetas de pasta"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			out, _ := h.handle(t, tc.utterance)
			require.NoError(t, out.Err)
			require.False(t, out.Exit)
			require.Equal(t, resolve.SourceDirect, out.Decision.Source)
			require.Equal(t, []Action{tc.want}, h.exec.actions)
			require.Equal(t, []string{tc.prompt}, out.Prompts)
		})
	}
}

func TestExitPhraseEndsWindow(t *testing.T) {
	h := newHarness(t)
	out, _ := h.handle(t, "adiós")
	require.True(t, out.Exit)
	require.Equal(t, []string{"Hasta luego"}, out.Prompts)
	require.Empty(t, h.exec.actions)
}

func TestEmptyUtteranceIsIgnored(t *testing.T) {
	h := newHarness(t)
	out, _ := h.handle(t, "   ")
	require.Equal(t, resolve.KindNoMatch, out.Decision.Kind)
	require.Empty(t, out.Prompts)
}

func TestSearchAsksForQuery(t *testing.T) {
	h := newHarness(t)
	out, _ := h.handle(t, "buscar", "El clima")
	require.NoError(t, out.Err)
	require.Equal(t, []Action{{Kind: ActionSearch, Query: "el clima"}}, h.exec.actions)
	require.Equal(t, []string{"¿Qué quieres buscar?", "Buscando el clima"}, out.Prompts)

	out, _ = h.handle(t, "buscar")
	require.Equal(t, []string{"¿Qué quieres buscar?", "Búsqueda cancelada"}, out.Prompts)
	require.Len(t, h.exec.actions, 1)
}

func TestIndexMatchExecutes(t *testing.T) {
	h := newHarness(t)
	out, _ := h.handle(t, "recarga la página")
	require.Equal(t, resolve.KindExecute, out.Decision.Kind)
	require.Equal(t, resolve.SourceIndex, out.Decision.Source)
	require.Equal(t, "recargar", out.Decision.Phrase)
	require.Equal(t, []Action{{Kind: ActionShortcut, Keys: []string{"f5"}}}, h.exec.actions)
}

func TestSuggestThenConfirm(t *testing.T) {
	h := newHarness(t)

	out, _ := h.handle(t, "cerrar")
	require.Equal(t, resolve.KindAwaitConfirmation, out.Decision.Kind)
	require.Equal(t, "cerrar pestaña", out.Decision.Phrase)
	require.Equal(t, []string{"¿Quisiste decir cerrar pestaña? Di confirmo"}, out.Prompts)
	require.Empty(t, h.exec.actions)

	out, _ = h.handle(t, "Sí, confirmo")
	require.Equal(t, resolve.SourceConfirmation, out.Decision.Source)
	require.Equal(t, []string{"Ejecutando cerrar pestaña", "Pestaña cerrada"}, out.Prompts)
	require.Equal(t, []Action{{Kind: ActionShortcut, Keys: []string{"ctrl", "w"}}}, h.exec.actions)

	_, pending := h.engine.Pending()
	require.False(t, pending)
}

func TestOtherUtteranceDiscardsSuggestion(t *testing.T) {
	h := newHarness(t)
	h.handle(t, "cerrar")

	h.handle(t, "nueva pestaña")
	_, pending := h.engine.Pending()
	require.False(t, pending)

	out, _ := h.handle(t, "confirmo")
	require.Equal(t, []string{"No hay nada que confirmar"}, out.Prompts)
	require.Len(t, h.exec.actions, 1)
}

func TestNoMatch(t *testing.T) {
	h := newHarness(t)
	out, _ := h.handle(t, "xyzzy plugh")
	require.Equal(t, resolve.KindNoMatch, out.Decision.Kind)
	require.Equal(t, []string{"No entendí, repite por favor"}, out.Prompts)
	require.Empty(t, h.exec.actions)
}

func TestCustomCommandLookup(t *testing.T) {
	h := newHarness(t)
	h.store.records = []store.Record{{ID: 1, Phrase: "mi banco", URL: "https://banco.example.com"}}

	out, _ := h.handle(t, "Mi banco")
	require.NoError(t, out.Err)
	require.Equal(t, []Action{{Kind: ActionOpenURL, URL: "https://banco.example.com"}}, h.exec.actions)
	require.Equal(t, []string{"Abriendo mi banco"}, out.Prompts)
}

func TestCustomLookupFailureFallsThroughToResolve(t *testing.T) {
	h := newHarness(t)
	h.store.err = errors.New("database is locked")

	out, _ := h.handle(t, "xyzzy")
	require.Equal(t, resolve.KindNoMatch, out.Decision.Kind)
}

func TestCreateCommandDialogue(t *testing.T) {
	h := newHarness(t)
	h.exec.url = "https://banco.example.com/login"

	out, _ := h.handle(t, "crear comando", "sí claro", "Mi Banco")
	require.NoError(t, out.Err)
	require.Equal(t, []string{
		"¿Quieres crear un comando para la página en la que te encuentras?",
		"¿Qué nombre le quieres poner?",
		`Has elegido "mi banco". Copiando la URL de la pestaña activa…`,
		"Comando mi banco agregado correctamente",
	}, out.Prompts)
	require.Equal(t, []store.Record{{ID: 1, Phrase: "mi banco", URL: "https://banco.example.com/login"}}, h.store.records)
	require.Contains(t, h.engine.Phrases(), "mi banco")

	phrase, score := h.engine.Query("mi banco")
	require.Equal(t, "mi banco", phrase)
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestCreateCommandDeclined(t *testing.T) {
	h := newHarness(t)
	out, _ := h.handle(t, "crear comando", "no gracias")
	require.Equal(t, []string{
		"¿Quieres crear un comando para la página en la que te encuentras?",
		"Comando no creado",
	}, out.Prompts)
	require.Empty(t, h.store.records)
}

func TestCreateCommandWithoutName(t *testing.T) {
	h := newHarness(t)
	out, _ := h.handle(t, "crear comando", "vale")
	require.Equal(t, "Comando no creado", out.Prompts[len(out.Prompts)-1])
	require.Empty(t, h.store.records)
}

func TestCreateCommandURLFailure(t *testing.T) {
	h := newHarness(t)
	h.exec.urlErr = errors.New("clipboard empty")

	out, _ := h.handle(t, "crear comando", "si", "banco")
	require.Error(t, out.Err)
	require.Equal(t, "Hubo un error al crear el comando", out.Prompts[len(out.Prompts)-1])
	require.NotContains(t, h.engine.Phrases(), "banco")
}

func TestLearnFailureLeavesRegistryUnchanged(t *testing.T) {
	h := newHarness(t)
	before := h.engine.Phrases()
	h.store.err = errors.New("disk full")

	_, err := h.dispatcher.Learn(context.Background(), "mi banco", "https://banco.example.com")
	require.Error(t, err)
	require.Equal(t, before, h.engine.Phrases())
}

func TestLearnRejectsEmptyPhraseAndMissingStore(t *testing.T) {
	h := newHarness(t)
	_, err := h.dispatcher.Learn(context.Background(), "  ", "https://banco.example.com")
	require.Error(t, err)

	d := New(h.engine, nil, nil, h.exec, Options{}, nil)
	_, err = d.Learn(context.Background(), "banco", "https://banco.example.com")
	require.ErrorIs(t, err, ErrNoStore)
}

func TestLearnDuplicatePhrase(t *testing.T) {
	h := newHarness(t)
	added, err := h.dispatcher.Learn(context.Background(), "volver", "https://example.com")
	require.NoError(t, err)
	require.False(t, added)
}

func TestActionFailureIsSpoken(t *testing.T) {
	h := newHarness(t)
	h.exec.fail[ActionSetVolume] = errors.New("pulse unavailable")

	out, _ := h.handle(t, "baja el volumen a 10")
	require.Error(t, out.Err)
	require.Equal(t, []string{"No pude ajustar el volumen"}, out.Prompts)
}

func TestBuiltinPhrasesOrder(t *testing.T) {
	phrases := BuiltinPhrases()
	require.Equal(t, "abrir chrome", phrases[0])
	require.Equal(t, "crear comando", phrases[len(phrases)-1])
	require.Len(t, phrases, 14)
}
