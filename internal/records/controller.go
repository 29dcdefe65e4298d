package records

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/UnknownOlympus/nomina/internal/client/backoffice"
	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/cockroachdb/errors"
)

// Operation names a controller action.
type Operation string

const (
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpToggle Operation = "toggle"
)

// Controller manages the form of one entity screen and translates it into backend calls.
//
// Every operation is stamped with a generation number when it starts. A response is
// applied only when its generation is newer than the last applied one, so an old
// response can never overwrite the outcome of a newer operation. The same operation
// cannot run twice at once.
type Controller[R any] struct {
	schema   Schema[R]
	client   backoffice.Requester
	log      *slog.Logger
	metrics  *metrics.Metrics
	onChange func(Form[R])

	mu      sync.Mutex
	form    Form[R]
	issued  uint64
	applied uint64
	version uint64
	pending map[Operation]bool

	hookMu    sync.Mutex
	published uint64
}

// Option customizes a Controller.
type Option[R any] func(*Controller[R])

// WithChangeHook registers fn to receive a copy of the form after every change.
// fn runs outside the controller lock, one call at a time, and never receives a
// form older than one it already got.
func WithChangeHook[R any](fn func(Form[R])) Option[R] {
	return func(c *Controller[R]) {
		c.onChange = fn
	}
}

// NewController creates a controller starting from form.
func NewController[R any](
	schema Schema[R],
	client backoffice.Requester,
	log *slog.Logger,
	appMetrics *metrics.Metrics,
	form Form[R],
	opts ...Option[R],
) *Controller[R] {
	ctrl := &Controller[R]{
		schema:  schema,
		client:  client,
		log:     log.With(slog.String("entity", schema.Entity)),
		metrics: appMetrics,
		form:    form.clone(),
		pending: make(map[Operation]bool),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl
}

// Schema returns the schema the controller was built with.
func (c *Controller[R]) Schema() Schema[R] {
	return c.schema
}

// Form returns a copy of the current form.
func (c *Controller[R]) Form() Form[R] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.form.clone()
}

// Pending reports whether op is in flight.
func (c *Controller[R]) Pending(op Operation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pending[op]
}

// SetID sets the identifier input.
func (c *Controller[R]) SetID(id string) {
	c.mutate(func(f *Form[R]) {
		f.ID = strings.TrimSpace(id)
	})
}

// SetDatabase selects the database context. The value is opaque to the controller.
func (c *Controller[R]) SetDatabase(database string) {
	c.mutate(func(f *Form[R]) {
		f.Database = strings.TrimSpace(database)
	})
}

// SetField sets the editable field with the given wire key.
func (c *Controller[R]) SetField(key, value string) error {
	field, ok := c.schema.Field(key)
	if !ok {
		return errors.Wrapf(ErrUnknownField, "%s has no field %q", c.schema.Entity, key)
	}

	c.mutate(func(f *Form[R]) {
		field.Set(&f.Fields, value)
	})
	return nil
}

// Reset empties the record inputs, the loaded view and the status.
func (c *Controller[R]) Reset() {
	c.mutate(func(f *Form[R]) {
		f.clear()
		f.Status = Status{}
	})
}

// Get loads the record identified by the form's ID into the form.
func (c *Controller[R]) Get(ctx context.Context) (Status, error) {
	form, gen, status, err := c.begin(OpGet, true)
	if err != nil {
		return status, err
	}

	var record R
	err = c.client.Do(ctx, backoffice.Request{
		Method:   http.MethodGet,
		Path:     c.schema.Path,
		ID:       form.ID,
		Database: form.Database,
	}, &record)
	if err != nil {
		return c.fail(ctx, OpGet, gen, err)
	}

	return c.finish(ctx, OpGet, gen, c.obtainedStatus(&record), func(f *Form[R]) {
		loaded := record
		f.Fields = record
		f.Loaded = &loaded
	})
}

// Create sends the form's fields as a new record. The identifier input is ignored.
func (c *Controller[R]) Create(ctx context.Context) (Status, error) {
	form, gen, status, err := c.begin(OpCreate, false)
	if err != nil {
		return status, err
	}

	var created any
	err = c.client.Do(ctx, backoffice.Request{
		Method:     http.MethodPost,
		Path:       c.schema.Path,
		Database:   form.Database,
		Body:       c.schema.payload(form.Fields),
		AllowEmpty: true,
	}, &created)
	if err != nil {
		return c.fail(ctx, OpCreate, gen, err)
	}

	status = c.successStatus(CodeCreated, c.schema.Title()+" created")
	status.RecordID = recordID(created)
	return c.finish(ctx, OpCreate, gen, status, (*Form[R]).clear)
}

// Update replaces the record identified by the form's ID with the form's fields.
func (c *Controller[R]) Update(ctx context.Context) (Status, error) {
	form, gen, status, err := c.begin(OpUpdate, true)
	if err != nil {
		return status, err
	}

	err = c.client.Do(ctx, backoffice.Request{
		Method:   http.MethodPut,
		Path:     c.schema.Path,
		ID:       form.ID,
		Database: form.Database,
		Body:     c.schema.payload(form.Fields),
	}, nil)
	if err != nil {
		return c.fail(ctx, OpUpdate, gen, err)
	}

	status = c.successStatus(CodeUpdated, c.schema.Title()+" updated")
	return c.finish(ctx, OpUpdate, gen, status, (*Form[R]).clear)
}

// Delete removes the record identified by the form's ID.
func (c *Controller[R]) Delete(ctx context.Context) (Status, error) {
	form, gen, status, err := c.begin(OpDelete, true)
	if err != nil {
		return status, err
	}

	err = c.client.Do(ctx, backoffice.Request{
		Method:   http.MethodDelete,
		Path:     c.schema.Path,
		ID:       form.ID,
		Database: form.Database,
	}, nil)
	if err != nil {
		return c.fail(ctx, OpDelete, gen, err)
	}

	status = c.successStatus(CodeDeleted, c.schema.Title()+" deleted")
	return c.finish(ctx, OpDelete, gen, status, (*Form[R]).clear)
}

// SetInactive flips the activation flag of the record identified by the form's ID.
// On success only the inactive flag of the loaded record changes; nothing is re-fetched.
func (c *Controller[R]) SetInactive(ctx context.Context, inactive bool) (Status, error) {
	activation := c.schema.Activation
	if activation == nil {
		return Status{}, errors.Wrap(ErrActivationUnsupported, c.schema.Entity)
	}

	form, gen, status, err := c.begin(OpToggle, true)
	if err != nil {
		return status, err
	}

	err = c.client.Do(ctx, backoffice.Request{
		Method:   http.MethodPut,
		Path:     activation.Path,
		ID:       form.ID,
		Database: form.Database,
		Body:     activation.Body(inactive),
	}, nil)
	if err != nil {
		return c.fail(ctx, OpToggle, gen, err)
	}

	status = c.successStatus(CodeActivated, "Activated")
	if inactive {
		status = c.successStatus(CodeDeactivated, "Deactivated")
	}
	return c.finish(ctx, OpToggle, gen, status, func(f *Form[R]) {
		if f.Loaded != nil {
			activation.SetInactive(f.Loaded, inactive)
		}
	})
}

// begin validates the form for op and registers op as pending.
func (c *Controller[R]) begin(op Operation, needsID bool) (Form[R], uint64, Status, error) {
	c.mu.Lock()

	if needsID && c.form.ID == "" {
		c.issued++
		c.applied = c.issued
		c.form.Status = Status{
			Kind: StatusWarning,
			Code: CodeMissingID,
			Text: fmt.Sprintf("Enter the %s ID", c.schema.Noun),
		}
		c.count(op, "invalid")
		status := c.form.Status
		form, version := c.changed()
		c.mu.Unlock()

		c.publish(form, version)
		return Form[R]{}, 0, status, errors.Wrapf(ErrMissingID, "%s %s", op, c.schema.Entity)
	}

	if c.pending[op] {
		c.count(op, "busy")
		c.mu.Unlock()
		return Form[R]{}, 0, Status{
			Kind: StatusWarning,
			Code: CodeBusy,
			Text: "Operation already in progress",
		}, errors.Wrapf(ErrBusy, "%s %s", op, c.schema.Entity)
	}

	c.pending[op] = true
	c.issued++
	form, gen := c.form.clone(), c.issued
	c.mu.Unlock()

	return form, gen, Status{}, nil
}

// finish applies a successful outcome unless a newer one was applied first.
func (c *Controller[R]) finish(
	ctx context.Context,
	op Operation,
	gen uint64,
	status Status,
	apply func(*Form[R]),
) (Status, error) {
	c.mu.Lock()

	delete(c.pending, op)
	if gen <= c.applied {
		applied := c.applied
		c.mu.Unlock()
		c.count(op, "superseded")
		c.log.DebugContext(ctx, "Discarding superseded response", "op", op, "generation", gen, "applied", applied)
		return status, errors.Wrapf(ErrSuperseded, "%s %s", op, c.schema.Entity)
	}

	c.applied = gen
	apply(&c.form)
	c.form.Status = status
	form, version := c.changed()
	c.mu.Unlock()

	c.publish(form, version)
	c.count(op, "success")
	c.log.InfoContext(ctx, "Record operation succeeded", "op", op, "database", form.Database)

	return status, nil
}

// fail records a failed outcome; the form keeps its pre-call inputs.
func (c *Controller[R]) fail(ctx context.Context, op Operation, gen uint64, cause error) (Status, error) {
	status := Status{
		Kind: StatusError,
		Code: CodeFailed,
		Text: backoffice.Message(cause),
	}
	err := errors.Wrapf(cause, "%s %s", op, c.schema.Entity)

	c.mu.Lock()

	delete(c.pending, op)
	if gen <= c.applied {
		c.mu.Unlock()
		c.count(op, "superseded")
		return status, errors.CombineErrors(errors.Wrapf(ErrSuperseded, "%s %s", op, c.schema.Entity), err)
	}

	c.applied = gen
	c.form.Status = status
	form, version := c.changed()
	c.mu.Unlock()

	c.publish(form, version)
	c.count(op, "failed")
	c.log.WarnContext(ctx, "Record operation failed", "op", op, "status", status.Text, "error", err)

	return status, err
}

func (c *Controller[R]) mutate(fn func(*Form[R])) {
	c.mu.Lock()
	fn(&c.form)
	form, version := c.changed()
	c.mu.Unlock()

	c.publish(form, version)
}

// changed stamps a change of the form and returns the copy to publish.
// It must be called with c.mu held.
func (c *Controller[R]) changed() (Form[R], uint64) {
	c.version++
	return c.form.clone(), c.version
}

// publish hands form to the change hook unless a newer form was already handed over.
func (c *Controller[R]) publish(form Form[R], version uint64) {
	if c.onChange == nil {
		return
	}

	c.hookMu.Lock()
	defer c.hookMu.Unlock()

	if version <= c.published {
		return
	}
	c.published = version
	c.onChange(form)
}

func (c *Controller[R]) count(op Operation, outcome string) {
	c.metrics.RecordOperations.WithLabelValues(c.schema.Entity, string(op), outcome).Inc()
}

func (c *Controller[R]) successStatus(code, text string) Status {
	return Status{Kind: StatusSuccess, Code: code, Text: text}
}

func (c *Controller[R]) obtainedStatus(record *R) Status {
	if c.schema.Activation == nil {
		return c.successStatus(CodeObtained, c.schema.Title()+" obtained")
	}
	if c.schema.Activation.Inactive(record) {
		return c.successStatus(CodeInactive, "Inactive")
	}
	return c.successStatus(CodeActive, "Active")
}

// recordID extracts an identifier from a create response, if the body exposes one.
func recordID(body any) string {
	fields, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"id", "Id", "ID"} {
		switch value := fields[key].(type) {
		case string:
			return value
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return ""
}
