package dynamodb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldservice-api/internal/domain"
	"github.com/jhoicas/fieldservice-api/internal/domain/entity"
)

// mockAPI implementación de API con una función por método.
type mockAPI struct {
	putItemFunc       func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	getItemFunc       func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	queryFunc         func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	scanFunc          func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	updateItemFunc    func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	deleteItemFunc    func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	describeTableFunc func(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

func (m *mockAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.putItemFunc != nil {
		return m.putItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockAPI) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getItemFunc != nil {
		return m.getItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *mockAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.scanFunc != nil {
		return m.scanFunc(ctx, params, optFns...)
	}
	return &dynamodb.ScanOutput{}, nil
}

func (m *mockAPI) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if m.updateItemFunc != nil {
		return m.updateItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockAPI) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.deleteItemFunc != nil {
		return m.deleteItemFunc(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockAPI) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if m.describeTableFunc != nil {
		return m.describeTableFunc(ctx, params, optFns...)
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func newTestRepo(t *testing.T, mock *mockAPI) *CustomerRepo {
	t.Helper()
	repo := NewCustomerRepository(&aws.Config{}, "customers", WithAPI(mock))
	require.NoError(t, repo.Connect())
	return repo
}

func customerItem(id, tenant, first string) map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		AttrCustomerID: &dynamodbtypes.AttributeValueMemberS{Value: id},
		AttrTenantID:   &dynamodbtypes.AttributeValueMemberS{Value: tenant},
		"firstName":    &dynamodbtypes.AttributeValueMemberS{Value: first},
		"lastName":     &dynamodbtypes.AttributeValueMemberS{Value: ""},
		"createdAt":    &dynamodbtypes.AttributeValueMemberN{Value: "1700000000000"},
		AttrUpdatedAt:  &dynamodbtypes.AttributeValueMemberN{Value: "1700000000001"},
	}
}

// attrNames devuelve los nombres reales detrás de los placeholders #n.
func attrNames(names map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, v := range names {
		out = append(out, v)
	}
	return out
}

func hasStringValue(values map[string]dynamodbtypes.AttributeValue, want string) bool {
	for _, v := range values {
		if s, ok := v.(*dynamodbtypes.AttributeValueMemberS); ok && s.Value == want {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// Connect / Init
// ──────────────────────────────────────────────────────────────────────────────

func TestConnect(t *testing.T) {
	t.Run("sin config AWS ni API falla", func(t *testing.T) {
		repo := NewCustomerRepository(nil, "customers")
		assert.Error(t, repo.Connect())
	})

	t.Run("tabla vacía falla", func(t *testing.T) {
		repo := NewCustomerRepository(&aws.Config{}, "", WithAPI(&mockAPI{}))
		assert.Error(t, repo.Connect())
	})

	t.Run("índice vacío falla", func(t *testing.T) {
		repo := NewCustomerRepository(&aws.Config{}, "customers", WithAPI(&mockAPI{}), WithTenantIndex(""))
		assert.Error(t, repo.Connect())
	})

	t.Run("config real crea cliente", func(t *testing.T) {
		repo := NewCustomerRepository(&aws.Config{Region: "us-east-1"}, "customers", WithEndpoint("http://localhost:8000"))
		require.NoError(t, repo.Connect())
		assert.NotNil(t, repo.client)
	})
}

func validTable() *dynamodbtypes.TableDescription {
	return &dynamodbtypes.TableDescription{
		TableStatus: dynamodbtypes.TableStatusActive,
		KeySchema: []dynamodbtypes.KeySchemaElement{
			{AttributeName: aws.String(AttrCustomerID), KeyType: dynamodbtypes.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []dynamodbtypes.GlobalSecondaryIndexDescription{
			{
				IndexName:   aws.String(DefaultTenantIndex),
				IndexStatus: dynamodbtypes.IndexStatusActive,
				KeySchema: []dynamodbtypes.KeySchemaElement{
					{AttributeName: aws.String(AttrTenantID), KeyType: dynamodbtypes.KeyTypeHash},
				},
				Projection: &dynamodbtypes.Projection{ProjectionType: dynamodbtypes.ProjectionTypeAll},
			},
		},
	}
}

func TestInit(t *testing.T) {
	describe := func(table *dynamodbtypes.TableDescription, err error) *mockAPI {
		return &mockAPI{describeTableFunc: func(_ context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			assert.Equal(t, "customers", aws.ToString(params.TableName))
			if err != nil {
				return nil, err
			}
			return &dynamodb.DescribeTableOutput{Table: table}, nil
		}}
	}

	t.Run("esquema válido", func(t *testing.T) {
		repo := newTestRepo(t, describe(validTable(), nil))
		assert.NoError(t, repo.Init(context.Background(), false))
	})

	t.Run("skip no llama a DescribeTable", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{describeTableFunc: func(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			t.Fatal("no debe llamarse")
			return nil, nil
		}})
		assert.NoError(t, repo.Init(context.Background(), true))
	})

	t.Run("tabla inexistente", func(t *testing.T) {
		repo := newTestRepo(t, describe(nil, &dynamodbtypes.ResourceNotFoundException{Message: aws.String("nope")}))
		err := repo.Init(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no existe")
	})

	t.Run("partition key incorrecta", func(t *testing.T) {
		table := validTable()
		table.KeySchema[0].AttributeName = aws.String("pk")
		repo := newTestRepo(t, describe(table, nil))
		err := repo.Init(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "partition key pk")
	})

	t.Run("tabla no activa", func(t *testing.T) {
		table := validTable()
		table.TableStatus = dynamodbtypes.TableStatusCreating
		repo := newTestRepo(t, describe(table, nil))
		assert.Error(t, repo.Init(context.Background(), false))
	})

	t.Run("índice ausente", func(t *testing.T) {
		table := validTable()
		table.GlobalSecondaryIndexes = nil
		repo := newTestRepo(t, describe(table, nil))
		err := repo.Init(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no encontrado")
	})

	t.Run("proyección no ALL", func(t *testing.T) {
		table := validTable()
		table.GlobalSecondaryIndexes[0].Projection.ProjectionType = dynamodbtypes.ProjectionTypeKeysOnly
		repo := newTestRepo(t, describe(table, nil))
		assert.Error(t, repo.Init(context.Background(), false))
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Get
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate(t *testing.T) {
	c := &entity.Customer{CustomerID: "c1", TenantID: "t1", FirstName: "Ana", CreatedAt: 10, UpdatedAt: 10}

	t.Run("put condicional", func(t *testing.T) {
		var captured *dynamodb.PutItemInput
		repo := newTestRepo(t, &mockAPI{putItemFunc: func(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			captured = params
			return &dynamodb.PutItemOutput{}, nil
		}})

		require.NoError(t, repo.Create(context.Background(), c))
		require.NotNil(t, captured)
		assert.Equal(t, "customers", aws.ToString(captured.TableName))
		assert.Contains(t, aws.ToString(captured.ConditionExpression), "attribute_not_exists")
		assert.Contains(t, attrNames(captured.ExpressionAttributeNames), AttrCustomerID)
		assert.Equal(t, &dynamodbtypes.AttributeValueMemberS{Value: "c1"}, captured.Item[AttrCustomerID])
		assert.Equal(t, &dynamodbtypes.AttributeValueMemberS{Value: "t1"}, captured.Item[AttrTenantID])
		assert.Equal(t, &dynamodbtypes.AttributeValueMemberN{Value: "10"}, captured.Item["createdAt"])
	})

	t.Run("colisión devuelve ErrConflict", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{putItemFunc: func(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			return nil, &dynamodbtypes.ConditionalCheckFailedException{Message: aws.String("exists")}
		}})
		assert.ErrorIs(t, repo.Create(context.Background(), c), domain.ErrConflict)
	})

	t.Run("fallo de I/O es StoreError", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{putItemFunc: func(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			return nil, errors.New("throttled")
		}})
		err := repo.Create(context.Background(), c)
		assert.ErrorIs(t, err, domain.ErrStore)
		assert.NotErrorIs(t, err, domain.ErrConflict)
	})
}

func TestGetByID(t *testing.T) {
	t.Run("encontrado", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{getItemFunc: func(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			assert.Equal(t, &dynamodbtypes.AttributeValueMemberS{Value: "c1"}, params.Key[AttrCustomerID])
			return &dynamodb.GetItemOutput{Item: customerItem("c1", "t1", "Ana")}, nil
		}})
		c, err := repo.GetByID(context.Background(), "c1")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Ana", c.FirstName)
		assert.Equal(t, int64(1700000000001), c.UpdatedAt)
	})

	t.Run("ausente devuelve nil", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{})
		c, err := repo.GetByID(context.Background(), "c1")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("error", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{getItemFunc: func(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return nil, errors.New("boom")
		}})
		_, err := repo.GetByID(context.Background(), "c1")
		assert.ErrorIs(t, err, domain.ErrStore)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// List / Search
// ──────────────────────────────────────────────────────────────────────────────

func TestListByTenant_PaginaHastaElLimite(t *testing.T) {
	var limits []int32
	calls := 0
	repo := newTestRepo(t, &mockAPI{queryFunc: func(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		assert.Equal(t, DefaultTenantIndex, aws.ToString(params.IndexName))
		assert.Contains(t, attrNames(params.ExpressionAttributeNames), AttrTenantID)
		assert.True(t, hasStringValue(params.ExpressionAttributeValues, "t1"))
		limits = append(limits, aws.ToInt32(params.Limit))
		calls++
		if calls == 1 {
			return &dynamodb.QueryOutput{
				Items:            []map[string]dynamodbtypes.AttributeValue{customerItem("c1", "t1", "A")},
				LastEvaluatedKey: customerKey("c1"),
			}, nil
		}
		assert.Equal(t, customerKey("c1"), params.ExclusiveStartKey)
		return &dynamodb.QueryOutput{
			Items:            []map[string]dynamodbtypes.AttributeValue{customerItem("c2", "t1", "B"), customerItem("c3", "t1", "C")},
			LastEvaluatedKey: customerKey("c3"),
		}, nil
	}})

	list, err := repo.ListByTenant(context.Background(), "t1", 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, []int32{3, 2}, limits)
	assert.Equal(t, 2, calls, "se detiene al alcanzar el límite aunque haya LastEvaluatedKey")
}

func TestListByTenant_Error(t *testing.T) {
	repo := newTestRepo(t, &mockAPI{queryFunc: func(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		return nil, errors.New("boom")
	}})
	_, err := repo.ListByTenant(context.Background(), "t1", 10)
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestSearchByTenant_RecorreTodasLasPaginas(t *testing.T) {
	calls := 0
	repo := newTestRepo(t, &mockAPI{scanFunc: func(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
		calls++
		filter := aws.ToString(params.FilterExpression)
		assert.Equal(t, 3, strings.Count(filter, "contains"))
		names := attrNames(params.ExpressionAttributeNames)
		for _, n := range []string{AttrTenantID, "firstName", "lastName", "email"} {
			assert.Contains(t, names, n)
		}
		assert.True(t, hasStringValue(params.ExpressionAttributeValues, "Ali"))
		if calls == 1 {
			return &dynamodb.ScanOutput{LastEvaluatedKey: customerKey("x")}, nil
		}
		return &dynamodb.ScanOutput{Items: []map[string]dynamodbtypes.AttributeValue{customerItem("c1", "t1", "Alice")}}, nil
	}})

	list, err := repo.SearchByTenant(context.Background(), "t1", "Ali")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].FirstName)
	assert.Equal(t, 2, calls)
}

func TestSearchByTenant_TerminoVacioSoloFiltraTenant(t *testing.T) {
	repo := newTestRepo(t, &mockAPI{scanFunc: func(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
		assert.NotContains(t, aws.ToString(params.FilterExpression), "contains")
		return &dynamodb.ScanOutput{}, nil
	}})
	list, err := repo.SearchByTenant(context.Background(), "t1", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate(t *testing.T) {
	city := "Cali"
	empty := ""
	fields := entity.CustomerFields{City: &city, LastName: &empty}

	t.Run("solo campos enviados más updatedAt", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{updateItemFunc: func(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			assert.Equal(t, dynamodbtypes.ReturnValueAllNew, params.ReturnValues)
			assert.Contains(t, aws.ToString(params.UpdateExpression), "SET")
			assert.Contains(t, aws.ToString(params.ConditionExpression), "attribute_exists")
			names := attrNames(params.ExpressionAttributeNames)
			assert.ElementsMatch(t, []string{AttrUpdatedAt, "city", "lastName", AttrCustomerID}, names)
			assert.True(t, hasStringValue(params.ExpressionAttributeValues, "Cali"))
			item := customerItem("c1", "t1", "Ana")
			item["city"] = &dynamodbtypes.AttributeValueMemberS{Value: "Cali"}
			item[AttrUpdatedAt] = &dynamodbtypes.AttributeValueMemberN{Value: "1700000000500"}
			return &dynamodb.UpdateItemOutput{Attributes: item}, nil
		}})

		c, err := repo.Update(context.Background(), "c1", fields, 1700000000500)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Cali", c.City)
		assert.Equal(t, int64(1700000000500), c.UpdatedAt)
	})

	t.Run("borrado concurrente devuelve nil", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{updateItemFunc: func(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			return nil, &dynamodbtypes.ConditionalCheckFailedException{}
		}})
		c, err := repo.Update(context.Background(), "c1", fields, 1)
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("error", func(t *testing.T) {
		repo := newTestRepo(t, &mockAPI{updateItemFunc: func(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			return nil, errors.New("boom")
		}})
		_, err := repo.Update(context.Background(), "c1", fields, 1)
		assert.ErrorIs(t, err, domain.ErrStore)
	})
}

func TestDelete(t *testing.T) {
	var key map[string]dynamodbtypes.AttributeValue
	repo := newTestRepo(t, &mockAPI{deleteItemFunc: func(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
		key = params.Key
		assert.Nil(t, params.ConditionExpression, "el borrado es incondicional")
		return &dynamodb.DeleteItemOutput{}, nil
	}})
	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.Equal(t, customerKey("c1"), key)

	failing := newTestRepo(t, &mockAPI{deleteItemFunc: func(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
		return nil, errors.New("boom")
	}})
	assert.ErrorIs(t, failing.Delete(context.Background(), "c1"), domain.ErrStore)
}
