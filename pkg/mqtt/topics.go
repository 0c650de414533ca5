package mqtt

import "fmt"

// DisplayCommandTopic is where brightness commands for a display are published
// Pattern: automation/command/display/{device}
func DisplayCommandTopic(device string) string {
	return fmt.Sprintf("automation/command/display/%s", device)
}

// DisplayContextTopic is where a display reports the brightness it is showing
// Pattern: automation/context/display/{device}
func DisplayContextTopic(device string) string {
	return fmt.Sprintf("automation/context/display/%s", device)
}

// DaylightContextTopic carries the agent's view of the current span
// Pattern: automation/context/daylight/{device}
func DaylightContextTopic(device string) string {
	return fmt.Sprintf("automation/context/daylight/%s", device)
}

// DaylightCommandTopic accepts manual override and resume commands
// Pattern: automation/command/daylight/{device}
func DaylightCommandTopic(device string) string {
	return fmt.Sprintf("automation/command/daylight/%s", device)
}

// AvailabilityTopic carries online/offline for a service (retained, LWT)
// Pattern: automation/status/{service}
func AvailabilityTopic(service string) string {
	return fmt.Sprintf("automation/status/%s", service)
}

// DeviceFromTopic returns the last path segment of a per-device topic
func DeviceFromTopic(topic string) string {
	for i := len(topic) - 1; i >= 0; i-- {
		if topic[i] == '/' {
			return topic[i+1:]
		}
	}
	return topic
}
