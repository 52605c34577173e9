package database

import "time"

// Date and timestamp columns are stored as ISO-8601 text. The (de)serialization
// lives here, scoped to the storage package, instead of any process-wide
// driver-level codec registration.
const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func formatDatePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}
