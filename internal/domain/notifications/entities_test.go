//go:build unit
// +build unit

package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotificationValidate(t *testing.T) {
	n := &Notification{
		ID:           "4a3a1f4e-1d2b-4c3a-9f2e-7b6d5c4a3b2a",
		Type:         "user.created",
		NotifiableID: "5b4b2f5e-2e3c-4d4b-8a3f-8c7e6d5b4c3b",
		Title:        "Welcome",
		Level:        LevelInfo,
	}
	assert.NoError(t, n.Validate())
	assert.False(t, n.IsRead())

	now := time.Now()
	n.ReadAt = &now
	assert.True(t, n.IsRead())

	n.Level = "loud"
	assert.Error(t, n.Validate())
}

func TestMessageValidate(t *testing.T) {
	assert.NoError(t, (&Message{Type: "x", Title: "t", Level: LevelSuccess}).Validate())
	assert.Error(t, (&Message{Type: "x", Level: LevelSuccess}).Validate())
}
