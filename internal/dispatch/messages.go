package dispatch

import (
	"fmt"

	"github.com/rbright/leya/internal/lexical"
)

const (
	msgGoodbye         = "Hasta luego"
	msgNotUnderstood   = "No entendí, repite por favor"
	msgNothingPending  = "No hay nada que confirmar"
	msgFailed          = "Hubo un error al procesar tu comando"
	msgVolumeFailed    = "No pude ajustar el volumen"
	msgAskSearch       = "¿Qué quieres buscar?"
	msgSearchCancelled = "Búsqueda cancelada"

	msgCreateAsk       = "¿Quieres crear un comando para la página en la que te encuentras?"
	msgCreateName      = "¿Qué nombre le quieres poner?"
	msgCreateCancelled = "Comando no creado"
	msgCreateFailed    = "Hubo un error al crear el comando"
)

func msgSuggest(phrase, token string) string {
	return fmt.Sprintf("¿Quisiste decir %s? Di %s", phrase, token)
}

func msgExecuting(phrase string) string {
	return "Ejecutando " + phrase
}

func msgOpening(name string) string {
	return "Abriendo " + name
}

func msgSearching(query string) string {
	return "Buscando " + query
}

func msgVolumeSet(level int) string {
	return fmt.Sprintf("Volumen al %d por ciento", level)
}

func msgSelecting(title string) string {
	return "Seleccionando " + title
}

func msgCreateCopying(name string) string {
	return fmt.Sprintf("Has elegido %q. Copiando la URL de la pestaña activa…", name)
}

func msgCreateDone(name string) string {
	return fmt.Sprintf("Comando %s agregado correctamente", name)
}

func failureMessage(kind ActionKind) string {
	switch kind {
	case ActionSetVolume, ActionChangeVolume:
		return msgVolumeFailed
	case ActionScreenshot:
		return "No pude tomar la captura de pantalla"
	case ActionLaunchBrowser:
		return "No pude abrir el navegador"
	default:
		return msgFailed
	}
}

var affirmatives = []string{"sí", "si", "claro", "vale", "por supuesto"}

func affirmative(text string) bool {
	for _, word := range affirmatives {
		if lexical.ContainsPhrase(text, word) {
			return true
		}
	}
	return false
}
