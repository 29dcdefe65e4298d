package bot

import (
	"context"

	"github.com/UnknownOlympus/nomina/internal/records"
	"github.com/UnknownOlympus/nomina/internal/session"
	"github.com/samber/lo"
)

// fieldValue is one labelled value shown on a record card.
type fieldValue struct {
	Key   string
	Label string // i18n key
	Value string
}

// cardView is the type-erased state of a record screen.
type cardView struct {
	Entity   string
	ID       string
	Database string
	Status   records.Status
	Loaded   bool
	Inactive *bool        // nil when the record has no activation flag or nothing is loaded
	Fields   []fieldValue // loaded record when Loaded, otherwise the form inputs
}

// recordScreen lets handlers drive a controller without knowing its record type.
type recordScreen interface {
	Entity() string
	HasActivation() bool
	Fields() []fieldValue
	View() cardView

	SetID(id string)
	SetDatabase(database string)
	SetField(key, value string) error
	Reset()

	Get(ctx context.Context) (records.Status, error)
	Create(ctx context.Context) (records.Status, error)
	Update(ctx context.Context) (records.Status, error)
	Delete(ctx context.Context) (records.Status, error)
	SetInactive(ctx context.Context, inactive bool) (records.Status, error)
}

type controllerScreen[R any] struct {
	*records.Controller[R]
}

func newScreen[R any](ctrl *records.Controller[R]) recordScreen {
	return controllerScreen[R]{Controller: ctrl}
}

func (s controllerScreen[R]) Entity() string {
	return s.Schema().Entity
}

func (s controllerScreen[R]) HasActivation() bool {
	return s.Schema().Activation != nil
}

func (s controllerScreen[R]) Fields() []fieldValue {
	form := s.Form()
	return fieldValues(s.Schema(), &form.Fields)
}

func (s controllerScreen[R]) View() cardView {
	schema := s.Schema()
	form := s.Form()

	view := cardView{
		Entity:   schema.Entity,
		ID:       form.ID,
		Database: form.Database,
		Status:   form.Status,
		Loaded:   form.IsLoaded(),
	}
	if !view.Loaded {
		view.Fields = fieldValues(schema, &form.Fields)
		return view
	}

	view.Fields = fieldValues(schema, form.Loaded)
	if schema.Activation != nil {
		inactive := schema.Activation.Inactive(form.Loaded)
		view.Inactive = &inactive
	}
	return view
}

func fieldValues[R any](schema records.Schema[R], record *R) []fieldValue {
	return lo.Map(schema.Fields, func(field records.Field[R], _ int) fieldValue {
		return fieldValue{Key: field.Key, Label: field.Label, Value: field.Get(record)}
	})
}

// screenFor returns the record screen of entity in the user's workspace.
func screenFor(ws *session.Workspace, entity string) (recordScreen, bool) {
	switch entity {
	case records.EntityEmployee:
		return newScreen(ws.Employees), true
	case records.EntitySalesperson:
		return newScreen(ws.Salespeople), true
	default:
		return nil, false
	}
}
