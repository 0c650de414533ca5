package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopics(t *testing.T) {
	assert.Equal(t, "automation/command/display/office", DisplayCommandTopic("office"))
	assert.Equal(t, "automation/context/display/office", DisplayContextTopic("office"))
	assert.Equal(t, "automation/context/daylight/office", DaylightContextTopic("office"))
	assert.Equal(t, "automation/command/daylight/office", DaylightCommandTopic("office"))
	assert.Equal(t, "automation/status/daylight-agent", AvailabilityTopic("daylight-agent"))
}

func TestDeviceFromTopic(t *testing.T) {
	assert.Equal(t, "office", DeviceFromTopic("automation/context/display/office"))
	assert.Equal(t, "", DeviceFromTopic("automation/context/display/"))
	assert.Equal(t, "bare", DeviceFromTopic("bare"))
}
