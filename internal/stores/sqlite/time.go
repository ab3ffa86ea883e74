package sqlite

import (
	"fmt"
	"time"
)

// timeLayout is fixed width so that stored timestamps compare correctly as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const dateLayout = "2006-01-02"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
