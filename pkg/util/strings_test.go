package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveDuplicateStrings(t *testing.T) {
	assert.Equal(t, []string{"F1", "F11", "F21"}, RemoveDuplicateStrings([]string{"F1", "F11", "F1", "", "F21", "F11"}, nil))
	assert.Equal(t, []string{"BNFG"}, RemoveDuplicateStrings([]string{"BNFG", "RPSP"}, []string{"RPSP"}))
	assert.Nil(t, RemoveDuplicateStrings(nil, nil))
}
