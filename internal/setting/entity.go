// AngelaMos | 2026
// entity.go

package setting

import (
	"time"
)

// Setting is one process-wide key/value pair editable from the admin
// console. Readers load it fresh on every use.
type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
