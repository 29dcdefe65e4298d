package records

// StatusKind classifies the last status message.
type StatusKind string

const (
	StatusNone    StatusKind = ""
	StatusSuccess StatusKind = "success"
	StatusWarning StatusKind = "warning"
	StatusError   StatusKind = "error"
)

// Status codes, also used as i18n keys.
const (
	CodeMissingID   = "status.missing_id"
	CodeBusy        = "status.busy"
	CodeObtained    = "status.obtained"
	CodeActive      = "status.active"
	CodeInactive    = "status.inactive"
	CodeCreated     = "status.created"
	CodeUpdated     = "status.updated"
	CodeDeleted     = "status.deleted"
	CodeActivated   = "status.activated"
	CodeDeactivated = "status.deactivated"
	CodeFailed      = "status.failed"
)

// Status is the last message shown to the user.
type Status struct {
	Kind     StatusKind `json:"kind,omitempty"`
	Code     string     `json:"code,omitempty"`
	Text     string     `json:"text,omitempty"`
	RecordID string     `json:"record_id,omitempty"` // identifier assigned by the backend on create, when exposed
}

// Form is the serializable state of one entity screen.
type Form[R any] struct {
	ID       string `json:"id"`
	Database string `json:"database"`
	Fields   R      `json:"fields"`
	Loaded   *R     `json:"loaded,omitempty"` // last record confirmed by the backend
	Status   Status `json:"status"`
}

// IsLoaded reports whether a record has been confirmed by the backend.
func (f Form[R]) IsLoaded() bool {
	return f.Loaded != nil
}

func (f Form[R]) clone() Form[R] {
	if f.Loaded != nil {
		loaded := *f.Loaded
		f.Loaded = &loaded
	}
	return f
}

// clear empties the record inputs and the loaded view, keeping database and status.
func (f *Form[R]) clear() {
	var empty R
	f.ID = ""
	f.Fields = empty
	f.Loaded = nil
}
