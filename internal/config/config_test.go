package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Intake.PastDueDays)
	assert.Empty(t, cfg.Intake.Holidays)
	assert.Equal(t, "orders.inbound", cfg.Messaging.Kafka.Topic)
}

func TestNewParsesHolidays(t *testing.T) {
	t.Setenv("INTAKE_HOLIDAYS", "2024-12-25, 2025-01-01")

	cfg, err := New()
	require.NoError(t, err)
	require.Len(t, cfg.Intake.Holidays, 2)
	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), cfg.Intake.Holidays[0])
}

func TestNewRejectsBadHoliday(t *testing.T) {
	t.Setenv("INTAKE_HOLIDAYS", "christmas")

	_, err := New()
	assert.Error(t, err)
}
