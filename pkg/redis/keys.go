package redis

import "fmt"

// SpanTableKey returns the key of a display's cached span table (hash)
// Pattern: daylight:spans:{device}
func SpanTableKey(device string) string {
	return fmt.Sprintf("daylight:spans:%s", device)
}
