package database

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volari/license-quoter/internal/config"
)

// fakeDynamo keeps items in a map keyed by the "key" attribute
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI

	mu    sync.Mutex
	items map[string]map[string]*dynamodb.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]*dynamodb.AttributeValue)}
}

func (f *fakeDynamo) DescribeTableWithContext(aws.Context, *dynamodb.DescribeTableInput, ...request.Option) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{}, nil
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[aws.StringValue(in.Key["key"].S)]}, nil
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[aws.StringValue(in.Item["key"].S)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItemWithContext(_ aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, aws.StringValue(in.Key["key"].S))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) ScanWithContext(_ aws.Context, in *dynamodb.ScanInput, _ ...request.Option) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := ""
	for _, v := range in.ExpressionAttributeValues {
		prefix = aws.StringValue(v.S)
	}

	out := &dynamodb.ScanOutput{}
	for k, item := range f.items {
		if strings.HasPrefix(k, prefix) {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func newTestRedisStore(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, prefix), mr
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"redis": func(t *testing.T) Store {
			s, _ := newTestRedisStore(t, "test:")
			return s
		},
		"dynamodb": func(t *testing.T) Store {
			return NewDynamoStoreWithClient(newFakeDynamo(), "quoter_kv", "test:")
		},
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			s := build(t)
			require.NoError(t, s.Ping(ctx))
			assert.Equal(t, name, s.Name())

			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "clickup_current_quote", `{"items":[]}`))
			require.NoError(t, s.Set(ctx, "clickup_currency", "BRL"))

			v, ok, err := s.Get(ctx, "clickup_current_quote")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"items":[]}`, v)

			require.NoError(t, s.Set(ctx, "clickup_currency", "USD"))
			v, _, err = s.Get(ctx, "clickup_currency")
			require.NoError(t, err)
			assert.Equal(t, "USD", v)

			require.NoError(t, s.Delete(ctx, "clickup_currency"))
			_, ok, err = s.Get(ctx, "clickup_currency")
			require.NoError(t, err)
			assert.False(t, ok)

			// deleting an absent key is not an error
			require.NoError(t, s.Delete(ctx, "clickup_currency"))

			require.NoError(t, s.Clear(ctx))
			_, ok, err = s.Get(ctx, "clickup_current_quote")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRedisStoreClearOnlyTouchesPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, "quoter:")

	require.NoError(t, mr.Set("other:key", "keep"))
	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, s.Set(ctx, "b", "2"))
	assert.True(t, mr.Exists("quoter:a"))

	require.NoError(t, s.Clear(ctx))

	assert.False(t, mr.Exists("quoter:a"))
	assert.False(t, mr.Exists("quoter:b"))
	v, err := mr.Get("other:key")
	require.NoError(t, err)
	assert.Equal(t, "keep", v)
}

func TestDynamoStoreClearOnlyTouchesPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	s := NewDynamoStoreWithClient(fake, "quoter_kv", "quoter:")
	other := NewDynamoStoreWithClient(fake, "quoter_kv", "other:")

	require.NoError(t, s.Set(ctx, "a", "1"))
	require.NoError(t, other.Set(ctx, "a", "keep"))

	require.NoError(t, s.Clear(ctx))

	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := other.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "keep", v)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		s := Open(ctx, config.StorageConfig{}, "us-east-1")
		assert.Equal(t, "memory", s.Name())
	})

	t.Run("redis when reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s := Open(ctx, config.StorageConfig{Backend: config.BackendRedis, RedisURL: "redis://" + mr.Addr()}, "")
		assert.Equal(t, "redis", s.Name())
		if rs, ok := s.(*RedisStore); ok {
			t.Cleanup(func() { _ = rs.Close() })
		}
	})

	t.Run("falls back when redis is down", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		s := Open(ctx, config.StorageConfig{Backend: config.BackendRedis, RedisURL: "redis://" + addr}, "")
		assert.Equal(t, "memory", s.Name())
	})

	t.Run("falls back on a malformed url", func(t *testing.T) {
		s := Open(ctx, config.StorageConfig{Backend: config.BackendRedis, RedisURL: "::not a url"}, "")
		assert.Equal(t, "memory", s.Name())
	})

	t.Run("falls back on an unknown backend", func(t *testing.T) {
		s := Open(ctx, config.StorageConfig{Backend: "etcd"}, "")
		assert.Equal(t, "memory", s.Name())
	})
}
