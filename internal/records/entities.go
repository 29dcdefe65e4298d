package records

import (
	"github.com/UnknownOlympus/nomina/internal/models"
)

// Entity names.
const (
	EntityEmployee    = "employee"
	EntitySalesperson = "salesperson"
)

// EmployeeSchema describes the employee resource at path with its activation sub-resource at statusPath.
func EmployeeSchema(path, statusPath string) Schema[models.Employee] {
	return Schema[models.Employee]{
		Entity: EntityEmployee,
		Noun:   "employee",
		Path:   path,
		Fields: []Field[models.Employee]{
			{
				Key:   "Codigo",
				Label: "field.code",
				Get:   func(e *models.Employee) string { return e.Codigo },
				Set:   func(e *models.Employee, v string) { e.Codigo = v },
			},
			{
				Key:   "NroDocumento",
				Label: "field.document",
				Get:   func(e *models.Employee) string { return e.NroDocumento },
				Set:   func(e *models.Employee, v string) { e.NroDocumento = v },
			},
			{
				Key:   "Apellido",
				Label: "field.last_name",
				Get:   func(e *models.Employee) string { return e.Apellido },
				Set:   func(e *models.Employee, v string) { e.Apellido = v },
			},
			{
				Key:   "PrimerNombre",
				Label: "field.first_name",
				Get:   func(e *models.Employee) string { return e.PrimerNombre },
				Set:   func(e *models.Employee, v string) { e.PrimerNombre = v },
			},
		},
		Activation: &Activation[models.Employee]{
			Path:     statusPath,
			Inactive: func(e *models.Employee) bool { return e.IsInactive() },
			SetInactive: func(e *models.Employee, inactive bool) {
				e.InactivoFW = &inactive
			},
			Body: func(inactive bool) any {
				return models.ActivationChange{InactivoFW: inactive}
			},
		},
		// the activation flag has its own sub-resource and never travels with the fields
		Payload: func(e models.Employee) models.Employee {
			e.InactivoFW = nil
			return e
		},
	}
}

// SalespersonSchema describes the salesperson resource at path.
func SalespersonSchema(path string) Schema[models.Salesperson] {
	return Schema[models.Salesperson]{
		Entity: EntitySalesperson,
		Noun:   "salesperson",
		Path:   path,
		Fields: []Field[models.Salesperson]{
			{
				Key:   "Codigo",
				Label: "field.code",
				Get:   func(s *models.Salesperson) string { return s.Codigo },
				Set:   func(s *models.Salesperson, v string) { s.Codigo = v },
			},
			{
				Key:   "NroDocumento",
				Label: "field.document",
				Get:   func(s *models.Salesperson) string { return s.NroDocumento },
				Set:   func(s *models.Salesperson, v string) { s.NroDocumento = v },
			},
			{
				Key:   "Nombre",
				Label: "field.name",
				Get:   func(s *models.Salesperson) string { return s.Nombre },
				Set:   func(s *models.Salesperson, v string) { s.Nombre = v },
			},
		},
	}
}
