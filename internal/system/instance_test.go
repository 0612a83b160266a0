package system

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInstanceID(t *testing.T) {
	first := GenerateInstanceID()
	second := GenerateInstanceID()

	assert.NotEqual(t, first, second)
	assert.True(t, strings.Contains(first, fmt.Sprintf("-%d-", os.Getpid())), first)
}
