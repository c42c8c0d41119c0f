package miner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spiffcs/racefinder/internal/model"
)

func TestAccumulator_MarkSeen(t *testing.T) {
	acc := NewAccumulator(0)

	assert.True(t, acc.MarkSeen("https://x/issues/1"))
	assert.False(t, acc.MarkSeen("https://x/issues/1"))
	assert.True(t, acc.MarkSeen("https://x/issues/2"))
}

func TestAccumulator_Cap(t *testing.T) {
	acc := NewAccumulator(2)

	assert.Equal(t, Continue, acc.Accept(model.Candidate{HTMLURL: "a"}))
	assert.False(t, acc.Full())
	assert.Equal(t, Halt, acc.Accept(model.Candidate{HTMLURL: "b"}))
	assert.True(t, acc.Full())
	assert.Equal(t, 2, acc.Len())
}

func TestAccumulator_UnboundedCap(t *testing.T) {
	acc := NewAccumulator(0)
	for i := 0; i < 100; i++ {
		assert.Equal(t, Continue, acc.Accept(model.Candidate{}))
	}
	assert.False(t, acc.Full())
}

func TestAccumulator_ResultsIsACopy(t *testing.T) {
	acc := NewAccumulator(0)
	acc.Accept(model.Candidate{HTMLURL: "a"})

	results := acc.Results()
	results[0].HTMLURL = "changed"

	assert.Equal(t, "a", acc.Results()[0].HTMLURL)
}
