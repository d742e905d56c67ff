package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DefaultTenantIndex es el nombre por defecto del GSI por tenant.
const DefaultTenantIndex = "tenantId-index"

// API es el subconjunto del cliente de DynamoDB que usa el almacén. Lo satisface *dynamodb.Client.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Option configura un CustomerRepo.
type Option func(*Options)

// Options configuración del almacén DynamoDB.
type Options struct {
	tenantIndex string
	endpoint    string
	api         API
}

func newOptions() *Options {
	return &Options{tenantIndex: DefaultTenantIndex}
}

func (o *Options) validate() error {
	if o.tenantIndex == "" {
		return errors.New("el nombre del índice de tenant no puede estar vacío")
	}
	return nil
}

// WithTenantIndex cambia el nombre del GSI por tenant.
func WithTenantIndex(name string) Option {
	return func(o *Options) {
		o.tenantIndex = name
	}
}

// WithEndpoint apunta el cliente a un endpoint propio (ej. dynamodb-local).
func WithEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.endpoint = endpoint
	}
}

// WithAPI inyecta una implementación propia de API (mocks en tests).
func WithAPI(api API) Option {
	return func(o *Options) {
		o.api = api
	}
}
