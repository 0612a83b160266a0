package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"

	"github.com/imposter-project/imposter-expect/pkg/logger"
)

// DynamoDBStoreProvider keeps every store in one table, partitioned by
// StoreName with Key as the sort key.
type DynamoDBStoreProvider struct {
	keys      keyPrefixer
	tableName string
	region    string
	ddb       *dynamodb.DynamoDB
}

func (p *DynamoDBStoreProvider) InitStores(ctx context.Context) error {
	if p.tableName == "" {
		return errors.New("dynamodb table name is required")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(p.region),
	})
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %w", err)
	}
	p.ddb = dynamodb.New(sess)
	logger.Debugf("using dynamodb table %s", p.tableName)
	return nil
}

func (p *DynamoDBStoreProvider) itemKey(storeName, key string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"StoreName": {S: aws.String(storeName)},
		"Key":       {S: aws.String(key)},
	}
}

func (p *DynamoDBStoreProvider) GetValue(ctx context.Context, storeName, key string) ([]byte, bool, error) {
	result, err := p.ddb.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(p.tableName),
		Key:       p.itemKey(storeName, p.keys.apply(key)),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get item: %w", err)
	}
	if result.Item == nil || result.Item["Value"] == nil || result.Item["Value"].S == nil {
		return nil, false, nil
	}
	return []byte(*result.Item["Value"].S), true, nil
}

func (p *DynamoDBStoreProvider) StoreValue(ctx context.Context, storeName, key string, value []byte) error {
	item := p.itemKey(storeName, p.keys.apply(key))
	item["Value"] = &dynamodb.AttributeValue{S: aws.String(string(value))}
	_, err := p.ddb.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(p.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

func (p *DynamoDBStoreProvider) GetAllValues(ctx context.Context, storeName, keyPrefix string) ([]Item, error) {
	var items []Item
	err := p.query(ctx, storeName, p.keys.apply(keyPrefix), func(item map[string]*dynamodb.AttributeValue) {
		if item["Key"] == nil || item["Value"] == nil || item["Value"].S == nil {
			return
		}
		items = append(items, Item{
			Key:   p.keys.remove(aws.StringValue(item["Key"].S)),
			Value: []byte(*item["Value"].S),
		})
	})
	if err != nil {
		return nil, err
	}
	sortItems(items)
	return items, nil
}

func (p *DynamoDBStoreProvider) DeleteValue(ctx context.Context, storeName, key string) error {
	_, err := p.ddb.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(p.tableName),
		Key:       p.itemKey(storeName, p.keys.apply(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// DeleteStore removes every item under the key prefix in storeName.
func (p *DynamoDBStoreProvider) DeleteStore(ctx context.Context, storeName string) error {
	var keys []string
	err := p.query(ctx, storeName, p.keys.apply(""), func(item map[string]*dynamodb.AttributeValue) {
		if item["Key"] != nil {
			keys = append(keys, aws.StringValue(item["Key"].S))
		}
	})
	if err != nil {
		return err
	}
	for _, key := range keys {
		_, err := p.ddb.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(p.tableName),
			Key:       p.itemKey(storeName, key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete item %s: %w", key, err)
		}
	}
	return nil
}

func (p *DynamoDBStoreProvider) query(ctx context.Context, storeName, keyPrefix string, fn func(map[string]*dynamodb.AttributeValue)) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(p.tableName),
		KeyConditionExpression: aws.String("StoreName = :storeName AND begins_with(#k, :keyPrefix)"),
		ExpressionAttributeNames: map[string]*string{
			"#k": aws.String("Key"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":storeName": {S: aws.String(storeName)},
			":keyPrefix": {S: aws.String(keyPrefix)},
		},
	}
	if keyPrefix == "" {
		input.KeyConditionExpression = aws.String("StoreName = :storeName")
		input.ExpressionAttributeNames = nil
		delete(input.ExpressionAttributeValues, ":keyPrefix")
	}

	err := p.ddb.QueryPagesWithContext(ctx, input, func(page *dynamodb.QueryOutput, lastPage bool) bool {
		for _, item := range page.Items {
			fn(item)
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to query items: %w", err)
	}
	return nil
}
