package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "'simple'", ShellQuote("simple"))
	assert.Equal(t, "'with space'", ShellQuote("with space"))
	assert.Equal(t, `'it'\''s'`, ShellQuote("it's"))
	assert.Equal(t, "''", ShellQuote(""))
}

func TestQuoteJoin(t *testing.T) {
	assert.Equal(t, "-i inventory/dc1.yml -l sw1,sw2",
		QuoteJoin([]string{"-i", "inventory/dc1.yml", "-l", "sw1,sw2"}))
	assert.Equal(t, "-e 'site name=dc 1'",
		QuoteJoin([]string{"-e", "site name=dc 1"}))
	assert.Equal(t, "''", QuoteJoin([]string{""}))
	assert.Equal(t, "", QuoteJoin(nil))
}
