package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidMonth(t *testing.T) {
	assert.True(t, ValidMonth("2025-01"))
	assert.False(t, ValidMonth("2025-13"))
	assert.False(t, ValidMonth("2025-1"))
	assert.False(t, ValidMonth("Januari"))
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2025-02", MonthOf(time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 120.5, Round2(120.4999999999999))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, -0.01, Round2(-0.005))
}
