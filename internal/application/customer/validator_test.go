package customer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldservice-api/internal/application/customer"
	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
)

func validationError(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "se esperaba *domain.ValidationError, se obtuvo %T", err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	return verr
}

func TestValidateCreate_SinFirstNameFalla(t *testing.T) {
	v := customer.NewValidator()
	inputs := []map[string]any{
		{},
		{"firstName": ""},
		{"lastName": "Solo apellido"},
		{"display_name": "   "},
	}
	for _, in := range inputs {
		_, err := v.ValidateCreate(customer.Normalize(in, customer.ModeCreate))
		verr := validationError(t, err)
		assert.True(t, verr.HasField("firstName"), "input %v debe reportar firstName", in)
	}
}

func TestValidateCreate_RecogeTodasLasViolaciones(t *testing.T) {
	v := customer.NewValidator()
	_, err := v.ValidateCreate(customer.Normalize(map[string]any{"email": "no-es-email"}, customer.ModeCreate))

	verr := validationError(t, err)
	assert.Len(t, verr.Fields, 2)
	assert.True(t, verr.HasField("firstName"))
	assert.True(t, verr.HasField("email"))
}

func TestValidateCreate_EmailVacioEsValido(t *testing.T) {
	v := customer.NewValidator()
	out, err := v.ValidateCreate(customer.Normalize(map[string]any{"firstName": "Ana"}, customer.ModeCreate))

	require.NoError(t, err)
	assert.Equal(t, "", *out.Email)
	assert.Len(t, out.Present(), 9, "creación devuelve todos los campos")
}

func TestValidateCreate_PayloadCompletoValido(t *testing.T) {
	v := customer.NewValidator()
	out, err := v.ValidateCreate(customer.Normalize(map[string]any{
		"first_name":    "Ana",
		"last_name":     "Gómez",
		"email":         "ana@example.com",
		"mobile_number": "3001234567",
	}, customer.ModeCreate))

	require.NoError(t, err)
	assert.Equal(t, "Ana", *out.FirstName)
	assert.Equal(t, "3001234567", *out.Phone)
}

func TestValidateUpdate_TodoOpcional(t *testing.T) {
	v := customer.NewValidator()
	out, err := v.ValidateUpdate(entity.CustomerFields{})

	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestValidateUpdate_AplicaReglasSiElCampoViene(t *testing.T) {
	v := customer.NewValidator()
	_, err := v.ValidateUpdate(entity.CustomerFields{FirstName: str(""), Email: str("mal")})

	verr := validationError(t, err)
	assert.True(t, verr.HasField("firstName"))
	assert.True(t, verr.HasField("email"))
}

func TestValidateUpdate_DevuelveSoloLosCamposEnviados(t *testing.T) {
	v := customer.NewValidator()
	in := entity.CustomerFields{LastName: str(""), Email: str("")}
	out, err := v.ValidateUpdate(in)

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestValidateUpdate_EmailVacioLimpiaElCampo(t *testing.T) {
	v := customer.NewValidator()
	out, err := v.ValidateUpdate(entity.CustomerFields{Email: str("")})

	require.NoError(t, err)
	require.NotNil(t, out.Email, "limpiar no es lo mismo que no enviar")
	assert.Equal(t, "", *out.Email)
}
