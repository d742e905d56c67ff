package customer

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
)

// Mode distingue creación (todos los campos, con defaults) de actualización parcial.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

const displayNameKey = "display_name"

// Fuentes aceptadas por campo canónico, en orden de precedencia.
var (
	firstNameKeys = []string{"firstName", "first_name"}
	lastNameKeys  = []string{"lastName", "last_name"}
	emailKeys     = []string{"email"}
	phoneKeys     = []string{"phone", "mobile_number", "home_number", "work_number"}
	addressKeys   = []string{"address"}
	cityKeys      = []string{"city"}
	stateKeys     = []string{"state"}
	zipCodeKeys   = []string{"zipCode", "zip_code"}
	notesKeys     = []string{"notes"}
)

// Normalize convierte un payload de cliente (camelCase, snake_case, display_name, varios teléfonos)
// en el conjunto canónico de campos. Es una función total: nunca falla.
//
// En ModeCreate todos los campos quedan presentes ("" si no vino ninguna fuente).
// En ModeUpdate un campo solo aparece si al menos una de sus fuentes estaba en el payload,
// aunque fuera "" o null.
func Normalize(raw map[string]any, mode Mode) entity.CustomerFields {
	if raw == nil {
		raw = map[string]any{}
	}
	first, last, hasDisplay := splitDisplayName(raw)

	var out entity.CustomerFields
	out.FirstName = resolve(raw, mode, firstNameKeys, first, hasDisplay)
	out.LastName = resolve(raw, mode, lastNameKeys, last, hasDisplay)
	out.Email = resolve(raw, mode, emailKeys, "", false)
	out.Phone = resolve(raw, mode, phoneKeys, "", false)
	out.Address = resolve(raw, mode, addressKeys, "", false)
	out.City = resolve(raw, mode, cityKeys, "", false)
	out.State = resolve(raw, mode, stateKeys, "", false)
	out.ZipCode = resolve(raw, mode, zipCodeKeys, "", false)
	out.Notes = resolve(raw, mode, notesKeys, "", false)
	return out
}

// resolve aplica "el primer valor no vacío gana" sobre keys y, si no hay ninguno,
// el valor derivado de display_name. Devuelve nil en ModeUpdate cuando no hubo fuente alguna.
func resolve(raw map[string]any, mode Mode, keys []string, fallback string, hasFallback bool) *string {
	present := hasFallback
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		present = true
		if s := toString(v); s != "" {
			return &s
		}
	}
	if hasFallback && fallback != "" {
		return &fallback
	}
	if !present && mode == ModeUpdate {
		return nil
	}
	empty := ""
	return &empty
}

// splitDisplayName separa display_name en primer token y resto unido por espacio.
func splitDisplayName(raw map[string]any) (first, rest string, ok bool) {
	v, ok := raw[displayNameKey]
	if !ok {
		return "", "", false
	}
	tokens := strings.Fields(toString(v))
	if len(tokens) == 0 {
		return "", "", true
	}
	return tokens[0], strings.Join(tokens[1:], " "), true
}

// toString acepta strings, números, booleanos y null; objetos y listas cuentan como vacío.
func toString(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		return ""
	}
	return cast.ToString(v)
}
