package records

import (
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field binds one editable form input to a wire field of R.
type Field[R any] struct {
	Key   string // wire name, e.g. "Codigo"
	Label string // i18n key of the input label
	Get   func(*R) string
	Set   func(*R, string)
}

// Activation describes the soft-delete toggle of a record type.
type Activation[R any] struct {
	Path        string
	Inactive    func(*R) bool
	SetInactive func(*R, bool)
	Body        func(inactive bool) any // request body of the toggle
}

// Schema parameterizes a Controller over a record shape.
type Schema[R any] struct {
	Entity     string // entity name used in logs, metrics and status codes
	Noun       string // human noun used in status text, e.g. "employee"
	Path       string // resource path
	Fields     []Field[R]
	Activation *Activation[R] // nil when the record cannot be toggled
	// Payload shapes the record sent on create and update. Nil sends the fields as they are.
	Payload func(R) R
}

// Field returns the field with the given wire key.
func (s Schema[R]) Field(key string) (Field[R], bool) {
	return lo.Find(s.Fields, func(field Field[R]) bool {
		return field.Key == key
	})
}

// Title returns the noun with its first letter upper-cased.
func (s Schema[R]) Title() string {
	return cases.Title(language.English).String(s.Noun)
}

func (s Schema[R]) payload(fields R) R {
	if s.Payload == nil {
		return fields
	}
	return s.Payload(fields)
}
