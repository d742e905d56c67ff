package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
	"github.com/jhoicas/fieldservice-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

var customerColumns = []string{
	"customer_id", "tenant_id", "first_name", "last_name", "email", "phone",
	"address", "city", "state", "zip_code", "notes", "created_at", "updated_at",
}

// fieldColumns traduce el nombre canónico de un campo a su columna.
var fieldColumns = map[string]string{
	entity.FieldFirstName: "first_name",
	entity.FieldLastName:  "last_name",
	entity.FieldEmail:     "email",
	entity.FieldPhone:     "phone",
	entity.FieldAddress:   "address",
	entity.FieldCity:      "city",
	entity.FieldState:     "state",
	entity.FieldZipCode:   "zip_code",
	entity.FieldNotes:     "notes",
}

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create inserta el cliente; un customer_id repetido devuelve domain.ErrConflict.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query, args, err := psql.Insert("customers").
		Columns(customerColumns...).
		Values(c.CustomerID, c.TenantID, c.FirstName, c.LastName, c.Email, c.Phone,
			c.Address, c.City, c.State, c.ZipCode, c.Notes, c.CreatedAt, c.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert customer: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return domain.NewStoreError("create", fmt.Errorf("insert customer: %w", err))
	}
	return nil
}

// GetByID obtiene un cliente por ID; (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		Where(sq.Eq{"customer_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get customer: %w", err)
	}
	c, err := scanCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStoreError("get", fmt.Errorf("get customer: %w", err))
	}
	return c, nil
}

// ListByTenant lista hasta limit clientes del tenant por fecha de creación.
func (r *CustomerRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*entity.Customer, error) {
	b := psql.Select(customerColumns...).
		From("customers").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at", "customer_id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return r.queryList(ctx, "list", b)
}

// SearchByTenant busca term (sensible a mayúsculas) en nombre, apellido y email.
func (r *CustomerRepo) SearchByTenant(ctx context.Context, tenantID, term string) ([]*entity.Customer, error) {
	b := psql.Select(customerColumns...).
		From("customers").
		Where(sq.Eq{"tenant_id": tenantID})
	if term != "" {
		b = b.Where(sq.Or{
			sq.Expr("strpos(first_name, ?) > 0", term),
			sq.Expr("strpos(last_name, ?) > 0", term),
			sq.Expr("strpos(email, ?) > 0", term),
		})
	}
	return r.queryList(ctx, "search", b.OrderBy("created_at", "customer_id"))
}

// Update aplica los campos enviados y updated_at; (nil, nil) si el cliente no existe.
func (r *CustomerRepo) Update(ctx context.Context, id string, fields entity.CustomerFields, updatedAt int64) (*entity.Customer, error) {
	b := psql.Update("customers").Set("updated_at", updatedAt)
	for _, fv := range fields.Present() {
		b = b.Set(fieldColumns[fv.Name], fv.Value)
	}
	query, args, err := b.
		Where(sq.Eq{"customer_id": id}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update customer: %w", err)
	}
	c, err := scanCustomer(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStoreError("update", fmt.Errorf("update customer: %w", err))
	}
	return c, nil
}

// Delete elimina un cliente por ID; no falla si no existe.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("customers").Where(sq.Eq{"customer_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete customer: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return domain.NewStoreError("delete", fmt.Errorf("delete customer: %w", err))
	}
	return nil
}

func (r *CustomerRepo) queryList(ctx context.Context, op string, b sq.SelectBuilder) ([]*entity.Customer, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s customers: %w", op, err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStoreError(op, fmt.Errorf("%s customers: %w", op, err))
	}
	defer rows.Close()
	list := make([]*entity.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, domain.NewStoreError(op, fmt.Errorf("scan customer: %w", err))
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	return list, nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.CustomerID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Address, &c.City, &c.State, &c.ZipCode, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func joinColumns() string {
	return strings.Join(customerColumns, ", ")
}
