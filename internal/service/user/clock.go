package user

import "time"

// Stored timestamps keep microseconds only (postgres precision)
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
