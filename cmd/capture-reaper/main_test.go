package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaleAfterFromEnv(t *testing.T) {
	t.Setenv("CAPTURE_STALE_MINUTES", "")
	assert.Equal(t, defaultStaleAfter, staleAfterFromEnv())

	t.Setenv("CAPTURE_STALE_MINUTES", "25")
	assert.Equal(t, 25*time.Minute, staleAfterFromEnv())

	t.Setenv("CAPTURE_STALE_MINUTES", "not-a-number")
	assert.Equal(t, defaultStaleAfter, staleAfterFromEnv())

	t.Setenv("CAPTURE_STALE_MINUTES", "-5")
	assert.Equal(t, defaultStaleAfter, staleAfterFromEnv())
}
