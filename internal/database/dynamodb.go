package database

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"

	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
)

// record is the item layout of the key-value table
type record struct {
	Key   string `dynamodbav:"key"`
	Value string `dynamodbav:"value"`
}

// DynamoStore keeps values in a DynamoDB table with a string hash key "key"
type DynamoStore struct {
	svc       dynamodbiface.DynamoDBAPI
	tableName string
	prefix    string
}

// NewDynamoStore creates a DynamoDB-backed store
func NewDynamoStore(region, tableName, endpoint, prefix string) (*DynamoStore, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	// Override endpoint for local testing
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.ErrDatabaseOperation("session", err)
	}

	return NewDynamoStoreWithClient(dynamodb.New(sess), tableName, prefix), nil
}

// NewDynamoStoreWithClient wraps an existing DynamoDB API client
func NewDynamoStoreWithClient(svc dynamodbiface.DynamoDBAPI, tableName, prefix string) *DynamoStore {
	return &DynamoStore{svc: svc, tableName: tableName, prefix: prefix}
}

// Name identifies the backend in logs
func (s *DynamoStore) Name() string { return "dynamodb" }

// Ping checks the table is reachable
func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.svc.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return errors.ErrDatabaseOperation("describe_table", err)
	}
	return nil
}

func (s *DynamoStore) itemKey(key string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"key": {S: aws.String(s.prefix + key)},
	}
}

// Get returns the value stored under key
func (s *DynamoStore) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := s.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logger.Error("Failed to get key", logger.Fields{"error": err.Error(), "key": key})
		return "", false, errors.ErrDatabaseOperation("get", err)
	}

	if result.Item == nil {
		return "", false, nil
	}

	var rec record
	if err := dynamodbattribute.UnmarshalMap(result.Item, &rec); err != nil {
		logger.Error("Failed to unmarshal record", logger.Fields{"error": err.Error(), "key": key})
		return "", false, errors.ErrDatabaseOperation("unmarshal", err)
	}
	return rec.Value, true, nil
}

// Set stores value under key
func (s *DynamoStore) Set(ctx context.Context, key, value string) error {
	av, err := dynamodbattribute.MarshalMap(record{Key: s.prefix + key, Value: value})
	if err != nil {
		logger.Error("Failed to marshal record", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("marshal", err)
	}

	_, err = s.svc.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		logger.Error("Failed to put key", logger.Fields{"error": err.Error(), "key": key})
		return errors.ErrDatabaseOperation("put", err)
	}
	return nil
}

// Delete removes key
func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.svc.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.itemKey(key),
	})
	if err != nil {
		logger.Error("Failed to delete key", logger.Fields{"error": err.Error(), "key": key})
		return errors.ErrDatabaseOperation("delete", err)
	}
	return nil
}

// Clear deletes every item whose key carries the store prefix
func (s *DynamoStore) Clear(ctx context.Context) error {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}
	if s.prefix != "" {
		filt := expression.Name("key").BeginsWith(s.prefix)
		expr, err := expression.NewBuilder().WithFilter(filt).Build()
		if err != nil {
			return errors.ErrDatabaseOperation("build_expression", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	for {
		result, err := s.svc.ScanWithContext(ctx, input)
		if err != nil {
			logger.Error("Failed to scan table", logger.Fields{"error": err.Error()})
			return errors.ErrDatabaseOperation("scan", err)
		}

		for _, item := range result.Items {
			_, err := s.svc.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(s.tableName),
				Key:       map[string]*dynamodb.AttributeValue{"key": item["key"]},
			})
			if err != nil {
				return errors.ErrDatabaseOperation("clear", err)
			}
		}

		if len(result.LastEvaluatedKey) == 0 {
			return nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}
