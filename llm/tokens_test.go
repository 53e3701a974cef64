package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Greater(t, CountTokens("Un voyage au Japon pour deux semaines."), 0)

	short := CountTokens("court")
	long := CountTokens(strings.Repeat("un texte beaucoup plus long ", 50))
	assert.Greater(t, long, short)
}
