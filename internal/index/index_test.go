package index

import (
	"math"
	"strings"
	"testing"

	"github.com/rbright/leya/internal/lexical"
	"github.com/stretchr/testify/require"
)

type fieldsNormalizer struct{}

func (fieldsNormalizer) Normalize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func TestQueryUntrainedIndex(t *testing.T) {
	ix := New(fieldsNormalizer{})
	phrase, score := ix.Query("nueva pestaña")
	require.Empty(t, phrase)
	require.Zero(t, score)
	require.False(t, ix.Trained())
}

func TestQueryEmptyIndex(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train(nil, 3)
	phrase, score := ix.Query("nueva pestaña")
	require.Empty(t, phrase)
	require.Zero(t, score)
	require.True(t, ix.Trained())
	require.Equal(t, uint64(3), ix.Version())
}

func TestQueryExactPhraseScoresOne(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train([]string{"nueva pestaña", "cerrar pestaña", "recargar"}, 1)

	phrase, score := ix.Query("cerrar pestaña")
	require.Equal(t, "cerrar pestaña", phrase)
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestQueryOutOfVocabularyScoresZero(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train([]string{"nueva pestaña", "recargar"}, 1)

	phrase, score := ix.Query("reproducir música")
	require.Empty(t, phrase)
	require.Zero(t, score)
}

func TestQueryMatchesHandComputedCosine(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train([]string{"a b", "a c"}, 1)

	// idf(a)=1, idf(b)=idf(c)=idf("a b")=ln(3/2)+1; query "a" only hits "a".
	rare := math.Log(1.5) + 1
	want := 1 / math.Sqrt(1+2*rare*rare)

	phrase, score := ix.Query("a")
	require.Equal(t, "a b", phrase)
	require.InDelta(t, want, score, 1e-12)
}

func TestQueryTieBreaksOnRegistryOrder(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train([]string{"a c", "a b"}, 1)

	phrase, _ := ix.Query("a")
	require.Equal(t, "a c", phrase)
}

func TestBigramsSeparateWordOrder(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train([]string{"nueva pestaña", "pestaña nueva"}, 1)

	phrase, score := ix.Query("pestaña nueva")
	require.Equal(t, "pestaña nueva", phrase)
	require.InDelta(t, 1.0, score, 1e-9)
}

func TestQueryIsDeterministic(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train([]string{"acercar pantalla", "alejar pantalla", "pantalla completa"}, 1)

	firstPhrase, firstScore := ix.Query("pantalla por favor")
	for i := 0; i < 10; i++ {
		phrase, score := ix.Query("pantalla por favor")
		require.Equal(t, firstPhrase, phrase)
		require.Equal(t, firstScore, score)
	}
}

func TestTrainReplacesPreviousModel(t *testing.T) {
	ix := New(fieldsNormalizer{})
	ix.Train([]string{"volver"}, 1)
	ix.Train([]string{"volver", "abrir spotify"}, 2)

	phrase, score := ix.Query("abrir spotify")
	require.Equal(t, "abrir spotify", phrase)
	require.InDelta(t, 1.0, score, 1e-9)
	require.Equal(t, uint64(2), ix.Version())
	require.Equal(t, 2, ix.Len())
	require.Equal(t, 4, ix.VocabularySize())
}

func TestQueryWithSpanishStemming(t *testing.T) {
	normalizer, err := lexical.New("spanish")
	require.NoError(t, err)

	ix := New(normalizer)
	ix.Train([]string{"nueva pestaña", "cerrar pestaña", "reabrir pestaña", "recargar"}, 1)

	phrase, score := ix.Query("Nuevas pestañas")
	require.Equal(t, "nueva pestaña", phrase)
	require.InDelta(t, 1.0, score, 1e-9)
}
