package helpers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldErrors(t *testing.T) {
	t.Parallel()

	e1 := fmt.Errorf("keypad line=5")
	e2 := fmt.Errorf("lamp line=21")
	assert.NoError(t, FoldErrors(nil))
	assert.NoError(t, FoldErrors([]error{nil, nil}))
	assert.Equal(t, e1, FoldErrors([]error{nil, e1}))
	assert.EqualError(t, FoldErrors([]error{e1, nil, e2}), "keypad line=5\nlamp line=21")
}
