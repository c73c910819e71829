package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentID_DeterministicHash(t *testing.T) {
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", ContentID("hello"))
	assert.Equal(t, ContentID("same text"), ContentID("same text"))
	assert.NotEqual(t, ContentID("one"), ContentID("two"))
}

func TestContentID_EmptyDocument(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", ContentID(""))
}
