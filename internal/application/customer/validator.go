package customer

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
)

// createSchema exige firstName; el resto son strings libres salvo email.
type createSchema struct {
	FirstName string `json:"firstName" validate:"required,min=1"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Notes     string `json:"notes"`
}

// updateSchema: todo opcional, pero si viene aplica la misma regla que en creación.
// Email va desreferenciado: "" (ausente o limpiado) no pasa por la regla de formato.
type updateSchema struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1"`
	Email     string  `json:"email" validate:"omitempty,email"`
}

// Validator valida la salida del normalizador antes de llegar al almacén.
type Validator struct {
	v *validator.Validate
}

// NewValidator construye el validador; los nombres de campo en los errores salen del tag json.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// ValidateCreate valida un payload de creación y devuelve todos los campos presentes (defaults aplicados).
// Si hay violaciones devuelve *domain.ValidationError con todas ellas.
func (val *Validator) ValidateCreate(in entity.CustomerFields) (entity.CustomerFields, error) {
	schema := createSchema{
		FirstName: deref(in.FirstName),
		LastName:  deref(in.LastName),
		Email:     deref(in.Email),
		Phone:     deref(in.Phone),
		Address:   deref(in.Address),
		City:      deref(in.City),
		State:     deref(in.State),
		ZipCode:   deref(in.ZipCode),
		Notes:     deref(in.Notes),
	}
	if err := val.check(schema); err != nil {
		return entity.CustomerFields{}, err
	}
	return entity.CustomerFields{
		FirstName: &schema.FirstName,
		LastName:  &schema.LastName,
		Email:     &schema.Email,
		Phone:     &schema.Phone,
		Address:   &schema.Address,
		City:      &schema.City,
		State:     &schema.State,
		ZipCode:   &schema.ZipCode,
		Notes:     &schema.Notes,
	}, nil
}

// ValidateUpdate valida un payload parcial y devuelve solo los campos enviados.
func (val *Validator) ValidateUpdate(in entity.CustomerFields) (entity.CustomerFields, error) {
	if err := val.check(updateSchema{FirstName: in.FirstName, Email: deref(in.Email)}); err != nil {
		return entity.CustomerFields{}, err
	}
	return in, nil
}

func (val *Validator) check(schema any) error {
	err := val.v.Struct(schema)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: "body", Message: err.Error()}}}
	}
	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, domain.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		return "debe tener al menos " + fe.Param() + " carácter(es)"
	case "email":
		return "debe ser un email válido"
	default:
		return "valor inválido (" + fe.Tag() + ")"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
