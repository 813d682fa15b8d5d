// Package systeminfo provides the key/value facts the assistant knows about
// itself (name, full form, supported languages). Facts are seeded into the
// database and surfaced by the identity capability.
package systeminfo

import "time"

// Fact is one system_info row.
type Fact struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Categories used by the built-in seed.
const (
	CategorySystem = "system"
)

// Well-known fact keys.
const (
	KeySystemName = "system_name"
	KeyFullForm   = "full_form"
	KeyLanguages  = "languages"
	KeyVersion    = "version"
)

// Defaults returns the facts seeded on first start.
func Defaults() []Fact {
	return []Fact{
		{Key: KeySystemName, Value: "AREN", Category: CategorySystem},
		{Key: KeyFullForm, Value: "Assistant for Regular and Extraordinary Needs", Category: CategorySystem},
		{Key: KeyLanguages, Value: "English and Hindi", Category: CategorySystem},
		{Key: KeyVersion, Value: "1.0.0", Category: CategorySystem},
	}
}
