package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
	"github.com/jhoicas/fieldservice-api/internal/domain/repository"
)

const (
	// AttrCustomerID es la partition key de la tabla.
	AttrCustomerID = "customerId"
	// AttrTenantID es la partition key del GSI de tenant.
	AttrTenantID = "tenantId"
	// AttrUpdatedAt se refresca en cada actualización.
	AttrUpdatedAt = "updatedAt"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository sobre DynamoDB.
type CustomerRepo struct {
	client    API
	tableName string
	awsCfg    *aws.Config
	opts      *Options
}

// NewCustomerRepository construye el adaptador. Llamar Connect antes de usarlo.
func NewCustomerRepository(awsCfg *aws.Config, tableName string, opts ...Option) *CustomerRepo {
	options := newOptions()
	for _, o := range opts {
		o(options)
	}
	return &CustomerRepo{
		awsCfg:    awsCfg,
		tableName: tableName,
		opts:      options,
	}
}

// Connect crea el cliente de DynamoDB (o usa el inyectado con WithAPI).
func (r *CustomerRepo) Connect() error {
	if err := r.opts.validate(); err != nil {
		return fmt.Errorf("opciones DynamoDB inválidas: %w", err)
	}
	if r.tableName == "" {
		return errors.New("el nombre de la tabla no puede estar vacío")
	}
	if r.opts.api != nil {
		r.client = r.opts.api
		return nil
	}
	if r.awsCfg == nil {
		return errors.New("se requiere configuración AWS")
	}
	r.client = dynamodb.NewFromConfig(*r.awsCfg, func(o *dynamodb.Options) {
		if r.opts.endpoint != "" {
			o.BaseEndpoint = aws.String(r.opts.endpoint)
		}
	})
	return nil
}

// Init valida que la tabla exista, esté activa, tenga customerId como partition key
// y el GSI de tenant con tenantId como partition key y proyección ALL.
func (r *CustomerRepo) Init(ctx context.Context, skipSchemaValidation bool) error {
	if skipSchemaValidation {
		return nil
	}
	out, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	if err != nil {
		var notFound *dynamodbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return fmt.Errorf("la tabla %s no existe", r.tableName)
		}
		return fmt.Errorf("describir tabla %s: %w", r.tableName, err)
	}
	table := out.Table
	if table == nil || len(table.KeySchema) < 1 {
		return fmt.Errorf("la tabla %s no tiene key schema", r.tableName)
	}
	if pk := aws.ToString(table.KeySchema[0].AttributeName); pk != AttrCustomerID {
		return fmt.Errorf("la tabla %s tiene partition key %s, se esperaba %s", r.tableName, pk, AttrCustomerID)
	}
	if len(table.KeySchema) > 1 {
		return fmt.Errorf("la tabla %s tiene clave compuesta, se esperaba clave simple", r.tableName)
	}
	if table.TableStatus != dynamodbtypes.TableStatusActive {
		return fmt.Errorf("la tabla %s no está activa (estado: %s)", r.tableName, table.TableStatus)
	}
	return verifyTenantIndex(table, r.opts.tenantIndex)
}

func verifyTenantIndex(table *dynamodbtypes.TableDescription, indexName string) error {
	for _, index := range table.GlobalSecondaryIndexes {
		if aws.ToString(index.IndexName) != indexName {
			continue
		}
		if len(index.KeySchema) < 1 || aws.ToString(index.KeySchema[0].AttributeName) != AttrTenantID {
			return fmt.Errorf("el índice %s no tiene %s como partition key", indexName, AttrTenantID)
		}
		if index.IndexStatus != dynamodbtypes.IndexStatusActive {
			return fmt.Errorf("el índice %s no está activo (estado: %s)", indexName, index.IndexStatus)
		}
		if index.Projection == nil || index.Projection.ProjectionType != dynamodbtypes.ProjectionTypeAll {
			return fmt.Errorf("el índice %s debe proyectar ALL", indexName)
		}
		return nil
	}
	return fmt.Errorf("índice global %s no encontrado", indexName)
}

// Create escribe el cliente con attribute_not_exists(customerId).
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	item, err := attributevalue.MarshalMap(customer)
	if err != nil {
		return fmt.Errorf("serializar cliente: %w", err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(AttrCustomerID))).
		Build()
	if err != nil {
		return fmt.Errorf("construir condición: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.ErrConflict
		}
		return domain.NewStoreError("create", fmt.Errorf("escribir en tabla %s: %w", r.tableName, err))
	}
	return nil
}

// GetByID lee por clave primaria; (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       customerKey(id),
	})
	if err != nil {
		return nil, domain.NewStoreError("get", fmt.Errorf("leer de tabla %s: %w", r.tableName, err))
	}
	if out.Item == nil {
		return nil, nil
	}
	var c entity.Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, domain.NewStoreError("get", fmt.Errorf("deserializar cliente %s: %w", id, err))
	}
	return &c, nil
}

// ListByTenant consulta el GSI de tenant siguiendo LastEvaluatedKey hasta juntar limit ítems.
func (r *CustomerRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*entity.Customer, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(AttrTenantID).Equal(expression.Value(tenantID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("construir key condition: %w", err)
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.opts.tenantIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	out := make([]*entity.Customer, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewStoreError("list", err)
		}
		if limit > 0 {
			input.Limit = aws.Int32(int32(limit - len(out)))
		}
		page, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, domain.NewStoreError("list", fmt.Errorf("consultar tabla %s: %w", r.tableName, err))
		}
		items, err := unmarshalCustomers(page.Items)
		if err != nil {
			return nil, domain.NewStoreError("list", err)
		}
		out = append(out, items...)
		if page.LastEvaluatedKey == nil || (limit > 0 && len(out) >= limit) {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SearchByTenant hace Scan de toda la tabla con filtro por tenant y contains() sobre
// firstName, lastName y email.
func (r *CustomerRepo) SearchByTenant(ctx context.Context, tenantID, term string) ([]*entity.Customer, error) {
	filter := expression.Name(AttrTenantID).Equal(expression.Value(tenantID))
	if term != "" {
		filter = filter.And(expression.Or(
			expression.Contains(expression.Name(entity.FieldFirstName), term),
			expression.Contains(expression.Name(entity.FieldLastName), term),
			expression.Contains(expression.Name(entity.FieldEmail), term),
		))
	}
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("construir filtro: %w", err)
	}
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	out := make([]*entity.Customer, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewStoreError("search", err)
		}
		page, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, domain.NewStoreError("search", fmt.Errorf("recorrer tabla %s: %w", r.tableName, err))
		}
		items, err := unmarshalCustomers(page.Items)
		if err != nil {
			return nil, domain.NewStoreError("search", err)
		}
		out = append(out, items...)
		if page.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
	return out, nil
}

// Update hace SET de los campos enviados y de updatedAt sobre un ítem existente y devuelve ALL_NEW.
func (r *CustomerRepo) Update(ctx context.Context, id string, fields entity.CustomerFields, updatedAt int64) (*entity.Customer, error) {
	update := expression.Set(expression.Name(AttrUpdatedAt), expression.Value(updatedAt))
	for _, fv := range fields.Present() {
		update = update.Set(expression.Name(fv.Name), expression.Value(fv.Value))
	}
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(AttrCustomerID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("construir update: %w", err)
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       customerKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              dynamodbtypes.ReturnValueAllNew,
	})
	if err != nil {
		// Borrado entre la lectura previa y el update: se reporta como ausente.
		if isConditionFailed(err) {
			return nil, nil
		}
		return nil, domain.NewStoreError("update", fmt.Errorf("actualizar en tabla %s: %w", r.tableName, err))
	}
	var c entity.Customer
	if err := attributevalue.UnmarshalMap(out.Attributes, &c); err != nil {
		return nil, domain.NewStoreError("update", fmt.Errorf("deserializar cliente %s: %w", id, err))
	}
	return &c, nil
}

// Delete borra por clave, exista o no.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       customerKey(id),
	})
	if err != nil {
		return domain.NewStoreError("delete", fmt.Errorf("borrar de tabla %s: %w", r.tableName, err))
	}
	return nil
}

func customerKey(id string) map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		AttrCustomerID: &dynamodbtypes.AttributeValueMemberS{Value: id},
	}
}

func unmarshalCustomers(items []map[string]dynamodbtypes.AttributeValue) ([]*entity.Customer, error) {
	out := make([]*entity.Customer, 0, len(items))
	for _, item := range items {
		var c entity.Customer
		if err := attributevalue.UnmarshalMap(item, &c); err != nil {
			return nil, fmt.Errorf("deserializar cliente: %w", err)
		}
		out = append(out, &c)
	}
	return out, nil
}

func isConditionFailed(err error) bool {
	var ccf *dynamodbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
