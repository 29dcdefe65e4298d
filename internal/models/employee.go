package models

// Employee is the employee record as the backend serializes it.
// Field names are the backend schema and must not be renamed.
type Employee struct {
	Codigo       string `json:"Codigo"`               // Codigo is the business-assigned short code
	NroDocumento string `json:"NroDocumento"`         // NroDocumento is the identity document number
	Apellido     string `json:"Apellido"`             // Apellido is the last name
	PrimerNombre string `json:"PrimerNombre"`         // PrimerNombre is the first name
	InactivoFW   *bool  `json:"InactivoFW,omitempty"` // InactivoFW marks a deactivated employee; nil means active
}

// IsInactive reports whether the employee is flagged inactive.
func (e Employee) IsInactive() bool {
	return e.InactivoFW != nil && *e.InactivoFW
}

// Salesperson is the salesperson record as the backend serializes it.
type Salesperson struct {
	Codigo       string `json:"Codigo"`
	NroDocumento string `json:"NroDocumento"`
	Nombre       string `json:"Nombre"`
}

// ActivationChange is the body of an activation toggle request.
type ActivationChange struct {
	InactivoFW bool `json:"InactivoFW"`
}
