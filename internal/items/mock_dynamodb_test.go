package items

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for the DynamoDB client. Items
// are stored per table in a nested map: table -> name -> attribute map.
// NOTE: intentionally minimal, not production-grade.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	failGet    error
	failPut    error
	failUpdate error
	failDelete error
	failScan   error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[tbl]
}

func pkOf(attrs map[string]types.AttributeValue) (string, error) {
	v, ok := attrs["name"]
	if !ok {
		return "", errors.New("missing name attribute")
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("name attribute is not a string")
	}
	return s.Value, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	tbl := m.ensureTable(*params.TableName)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := tbl[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return nil, m.failPut
	}
	tbl := m.ensureTable(*params.TableName)
	pk, err := pkOf(params.Item)
	if err != nil {
		return nil, err
	}
	tbl[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

// UpdateItem supports the store's single expression:
// SET price = :p, image = :i
func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return nil, m.failUpdate
	}
	tbl := m.ensureTable(*params.TableName)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := tbl[pk]
	if !ok {
		// DynamoDB upserts on update; mirror that even though the store
		// only updates records it just looked up.
		item = map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: pk},
		}
		tbl[pk] = item
	}
	if v, ok := params.ExpressionAttributeValues[":p"]; ok {
		item["price"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":i"]; ok {
		item["image"] = v
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return nil, m.failDelete
	}
	tbl := m.ensureTable(*params.TableName)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := tbl[pk]
	if !ok {
		return &dyn.DeleteItemOutput{}, nil
	}
	delete(tbl, pk)
	if params.ReturnValues == types.ReturnValueAllOld {
		return &dyn.DeleteItemOutput{Attributes: item}, nil
	}
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failScan != nil {
		return nil, m.failScan
	}
	tbl := m.ensureTable(*params.TableName)
	limit := len(tbl)
	if params.Limit != nil && int(*params.Limit) < limit {
		limit = int(*params.Limit)
	}
	items := make([]map[string]types.AttributeValue, 0, limit)
	for _, item := range tbl {
		if len(items) == limit {
			break
		}
		items = append(items, item)
	}
	return &dyn.ScanOutput{Items: items, Count: int32(len(items))}, nil
}
