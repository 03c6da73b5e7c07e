package ingestion_engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords_FrequencyOrder(t *testing.T) {
	got := ExtractKeywords("alpha beta alpha gamma alpha beta")
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestExtractKeywords_DropsShortTokens(t *testing.T) {
	got := ExtractKeywords("the cat and dog sat on a rug")
	assert.Empty(t, got)
}

func TestExtractKeywords_NormalisesCaseAndPunctuation(t *testing.T) {
	got := ExtractKeywords("Hello, HELLO! hello... world?")
	assert.Equal(t, []string{"hello", "world"}, got)
}

func TestExtractKeywords_CapsAtTwenty(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "word%02d ", i)
	}

	got := ExtractKeywords(b.String())
	require.Len(t, got, 20)
	// All counts tie at one, so first-seen order decides.
	assert.Equal(t, "word00", got[0])
	assert.Equal(t, "word19", got[19])
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	text := "vector search pipelines embed vector chunks and search indexes serve vector queries"
	first := ExtractKeywords(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractKeywords(text))
	}
}

func TestExtractKeywords_Empty(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.Empty(t, ExtractKeywords("   \n\t  "))
}
