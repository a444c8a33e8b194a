package items

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/oortcloud/item-catalog/internal/awsx"
	"github.com/oortcloud/item-catalog/internal/decimal"
)

// ImageAcquirer fetches and stores an image for an item name, returning the
// stored key or the empty string when acquisition failed.
type ImageAcquirer interface {
	Acquire(ctx context.Context, itemName string) string
}

// ImageRemover deletes a stored image object by key.
type ImageRemover interface {
	DeleteObject(ctx context.Context, key string) error
}

// Store encapsulates operations on the items table.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	images    ImageAcquirer
	remover   ImageRemover
}

// NewStore creates a new items Store.
func NewStore(client awsx.DynamoDBAPI, tableName string, images ImageAcquirer, remover ImageRemover) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		images:    images,
		remover:   remover,
	}
}

func nameKey(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"name": &types.AttributeValueMemberS{Value: name},
	}
}

// FindByName fetches an item by name. Returns (nil, nil) if not found.
// Stored decimals are normalized to floats before returning.
func (s *Store) FindByName(ctx context.Context, name string) (*Item, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       nameKey(name),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return itemFromAttrs(out.Item), nil
}

func itemFromAttrs(raw map[string]types.AttributeValue) *Item {
	flat := decimal.NormalizeMap(raw)
	it := &Item{}
	if v, ok := flat["name"].(string); ok {
		it.Name = v
	}
	if v, ok := flat["price"].(float64); ok {
		it.Price = v
	}
	if v, ok := flat["image"].(string); ok {
		it.Image = v
	}
	return it
}

// Insert acquires an image for the item and writes a new record
// unconditionally. Callers must check for an existing record first.
func (s *Store) Insert(ctx context.Context, name string, price float64) error {
	rec := Item{
		Name:  name,
		Price: price,
		Image: s.images.Acquire(ctx, name),
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	// exact decimal text form, not the marshaler's float rendering
	item["price"] = decimal.FromFloat(price)

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Update replaces the price and image of an existing record. The current
// image is deleted first; a lookup or image-delete failure fails the whole
// update. A fresh image is then acquired (best-effort) and the record is
// updated field by field.
func (s *Store) Update(ctx context.Context, name string, price float64) error {
	existing, err := s.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("item %s not found", name)
	}
	if existing.Image != "" {
		if err := s.remover.DeleteObject(ctx, existing.Image); err != nil {
			return fmt.Errorf("remove old image: %w", err)
		}
	}

	var imageAttr types.AttributeValue = &types.AttributeValueMemberNULL{Value: true}
	if key := s.images.Acquire(ctx, name); key != "" {
		imageAttr = &types.AttributeValueMemberS{Value: key}
	}

	_, err = s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              nameKey(name),
		UpdateExpression: aws.String("SET price = :p, image = :i"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": decimal.FromFloat(price),
			":i": imageAttr,
		},
	})
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete removes the record and, when one existed, its image object.
// Image cleanup failures do not roll the record delete back; they are
// reported through the outcome instead.
func (s *Store) Delete(ctx context.Context, name string) (DeleteOutcome, error) {
	out, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:    &s.tableName,
		Key:          nameKey(name),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return DeleteNotFound, fmt.Errorf("delete item: %w", err)
	}
	if len(out.Attributes) == 0 {
		return DeleteNotFound, nil
	}

	img, ok := out.Attributes["image"].(*types.AttributeValueMemberS)
	if !ok || img.Value == "" {
		return Deleted, nil
	}
	if err := s.remover.DeleteObject(ctx, img.Value); err != nil {
		log.Printf("items: remove image %s for %s: %v", img.Value, name, err)
		return DeletedImageCleanupFailed, nil
	}
	return Deleted, nil
}

// List scans up to limit records, normalizes their decimals and strips the
// image key from each.
func (s *Store) List(ctx context.Context, limit int32) ([]Item, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.tableName,
		Limit:     aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	list := make([]Item, 0, len(out.Items))
	for _, raw := range out.Items {
		it := itemFromAttrs(raw)
		if it.Image == "" {
			log.Printf("items: no image stored for item %s", it.Name)
		}
		it.Image = ""
		list = append(list, *it)
	}
	return list, nil
}
