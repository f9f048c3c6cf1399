package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeratorIsValid(t *testing.T) {
	m := NewModerator([]string{"joke", "flirt", "tell me a joke"})

	assert.False(t, m.IsValid("tell me a joke"))
	assert.False(t, m.IsValid("JOKE please"))
	assert.False(t, m.IsValid("can you flirt with me"))
	assert.True(t, m.IsValid("what is the statute of limitations"))
	assert.True(t, m.IsValid(""))
}

func TestModeratorSubstringMatch(t *testing.T) {
	m := NewModerator([]string{"joke"})

	// substring anywhere in the query invalidates it
	assert.False(t, m.IsValid("this is no joketown"))
	assert.False(t, m.IsValid("Joker precedent"))
}

func TestModeratorIgnoresBlankPhrases(t *testing.T) {
	m := NewModerator([]string{"", "  ", "joke"})

	assert.True(t, m.IsValid("what is habeas corpus"))
	assert.False(t, m.IsValid("a joke"))
}
