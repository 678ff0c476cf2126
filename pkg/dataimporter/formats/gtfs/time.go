package gtfs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime converts a GTFS time of day ("H:MM:SS" or "HH:MM:SS") into an offset from the start
// of the service day. Hours of 24 and above are valid and describe post-midnight service.
func ParseTime(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid gtfs time %q", value)
	}

	var values [3]int
	for i, part := range parts {
		if part == "" || len(part) > 2 && i > 0 {
			return 0, fmt.Errorf("invalid gtfs time %q", value)
		}

		number, err := strconv.Atoi(part)
		if err != nil || number < 0 {
			return 0, fmt.Errorf("invalid gtfs time %q", value)
		}
		values[i] = number
	}

	if values[1] > 59 || values[2] > 59 {
		return 0, fmt.Errorf("invalid gtfs time %q", value)
	}

	return time.Duration(values[0])*time.Hour + time.Duration(values[1])*time.Minute + time.Duration(values[2])*time.Second, nil
}

// FormatTime is the inverse of ParseTime, always zero padded
func FormatTime(offset time.Duration) string {
	seconds := int(offset / time.Second)

	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
