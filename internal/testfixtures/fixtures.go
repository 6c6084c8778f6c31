// Package testfixtures provides deterministic helpers shared by tests.
package testfixtures

import "time"

// ReferenceTime returns the fixed instant tests anchor their clocks to: a
// Thursday morning so relative dates resolve predictably.
func ReferenceTime() time.Time {
	return time.Date(2024, time.November, 21, 9, 0, 0, 0, time.UTC)
}
