package handlers

import (
	"context"
	"errors"
	"sync"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockDynamo keeps one table of items keyed by name.
type mockDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func namePK(attrs map[string]types.AttributeValue) (string, error) {
	v, ok := attrs["name"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing name attribute")
	}
	return v.Value, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := namePK(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := namePK(params.Item)
	if err != nil {
		return nil, err
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk, err := namePK(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[pk]
	if !ok {
		return nil, errors.New("item not found")
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
	pk, err := namePK(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[pk]
	if !ok {
		return &dyn.DeleteItemOutput{}, nil
	}
	delete(m.items, pk)
	return &dyn.DeleteItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]map[string]types.AttributeValue, 0, len(m.items))
	for _, item := range m.items {
		if params.Limit != nil && len(items) == int(*params.Limit) {
			break
		}
		items = append(items, item)
	}
	return &dyn.ScanOutput{Items: items}, nil
}

// mockS3 tracks deletions; the handlers only touch S3 through Links.
type mockS3 struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	m.deleted = append(m.deleted, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

// mockPresign signs every key with a fixed prefix.
type mockPresign struct {
	err error
}

func (m *mockPresign) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + *params.Key}, nil
}

var errMockDelete = errors.New("mock delete failure")

// fakeAcquirer returns keys from a fixed sequence, then empty strings.
type fakeAcquirer struct {
	mu    sync.Mutex
	keys  []string
	calls int
}

func (f *fakeAcquirer) Acquire(ctx context.Context, itemName string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls >= len(f.keys) {
		return ""
	}
	key := f.keys[f.calls]
	f.calls++
	return key
}
