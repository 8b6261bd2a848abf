package ids

import "github.com/segmentio/ksuid"

// New returns a new k-sortable unique id.
func New() string {
	return ksuid.New().String()
}
