package entity

// Customer representa un cliente de un tenant (gestión de servicios en campo).
// CreatedAt y UpdatedAt son epoch en milisegundos.
type Customer struct {
	CustomerID string `json:"customerId" dynamodbav:"customerId"`
	TenantID   string `json:"tenantId" dynamodbav:"tenantId"`
	FirstName  string `json:"firstName" dynamodbav:"firstName"`
	LastName   string `json:"lastName" dynamodbav:"lastName"`
	Email      string `json:"email" dynamodbav:"email"`
	Phone      string `json:"phone" dynamodbav:"phone"`
	Address    string `json:"address" dynamodbav:"address"`
	City       string `json:"city" dynamodbav:"city"`
	State      string `json:"state" dynamodbav:"state"`
	ZipCode    string `json:"zipCode" dynamodbav:"zipCode"`
	Notes      string `json:"notes" dynamodbav:"notes"`
	CreatedAt  int64  `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Nombres canónicos de los atributos editables de un cliente.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldAddress   = "address"
	FieldCity      = "city"
	FieldState     = "state"
	FieldZipCode   = "zipCode"
	FieldNotes     = "notes"
)

// CustomerFields es el conjunto canónico de campos editables.
// Un puntero nil significa "no enviado"; un puntero a "" significa "limpiar el campo".
type CustomerFields struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	ZipCode   *string `json:"zipCode,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// FieldValue es un par atributo/valor de un CustomerFields.
type FieldValue struct {
	Name  string
	Value string
}

// Present devuelve los campos enviados, siempre en el mismo orden.
func (f CustomerFields) Present() []FieldValue {
	all := []struct {
		name string
		v    *string
	}{
		{FieldFirstName, f.FirstName},
		{FieldLastName, f.LastName},
		{FieldEmail, f.Email},
		{FieldPhone, f.Phone},
		{FieldAddress, f.Address},
		{FieldCity, f.City},
		{FieldState, f.State},
		{FieldZipCode, f.ZipCode},
		{FieldNotes, f.Notes},
	}
	out := make([]FieldValue, 0, len(all))
	for _, it := range all {
		if it.v != nil {
			out = append(out, FieldValue{Name: it.name, Value: *it.v})
		}
	}
	return out
}

// IsEmpty indica si no se envió ningún campo.
func (f CustomerFields) IsEmpty() bool {
	return len(f.Present()) == 0
}

// Apply copia sobre c los campos enviados. No toca ID, tenant ni timestamps.
func (f CustomerFields) Apply(c *Customer) {
	for _, fv := range f.Present() {
		switch fv.Name {
		case FieldFirstName:
			c.FirstName = fv.Value
		case FieldLastName:
			c.LastName = fv.Value
		case FieldEmail:
			c.Email = fv.Value
		case FieldPhone:
			c.Phone = fv.Value
		case FieldAddress:
			c.Address = fv.Value
		case FieldCity:
			c.City = fv.Value
		case FieldState:
			c.State = fv.Value
		case FieldZipCode:
			c.ZipCode = fv.Value
		case FieldNotes:
			c.Notes = fv.Value
		}
	}
}
