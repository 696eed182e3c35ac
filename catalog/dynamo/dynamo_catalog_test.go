package dynamo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flashgo/catalog"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // name:version -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemVersion(item map[string]types.AttributeValue) uint64 {
	v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
	return v
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := params.Item["image_name"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := name + ":" + version

	// Check conditional expression
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := params.ExpressionAttributeValues[":name"].(*types.AttributeValueMemberS).Value

	// Find items matching the name, sort by version descending
	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["image_name"].(*types.AttributeValueMemberS).Value == name {
			items = append(items, item)
		}
	}

	for i := 0; i < len(items)-1; i++ {
		for j := i + 1; j < len(items); j++ {
			if itemVersion(items[i]) < itemVersion(items[j]) {
				items[i], items[j] = items[j], items[i]
			}
		}
	}

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *mockDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := params.Key["image_name"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value

	if item, ok := m.items[name+":"+version]; ok {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDDBClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		items = append(items, item)
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func (m *mockDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := params.Key["image_name"].(*types.AttributeValueMemberS).Value
	version := params.Key["version"].(*types.AttributeValueMemberN).Value
	delete(m.items, name+":"+version)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestCatalogFirstCommit(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	version, err := cat.Commit(ctx, catalog.ImageInfo{
		Name:        "flip-a7/ext",
		Size:        4096,
		Checksum:    0xdeadbeef,
		Compression: "zstd",
		FileCount:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	info, err := cat.Latest(ctx, "flip-a7/ext")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.Version)
	assert.Equal(t, int64(4096), info.Size)
	assert.Equal(t, uint32(0xdeadbeef), info.Checksum)
	assert.Equal(t, "zstd", info.Compression)
	assert.Equal(t, 3, info.FileCount)
	assert.False(t, info.CreatedAt.IsZero())
}

func TestCatalogMultipleCommits(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	// Cross the single-digit boundary so lexicographic version ordering
	// would be caught.
	for i := 1; i <= 12; i++ {
		version, err := cat.Commit(ctx, catalog.ImageInfo{Name: "img", FileCount: i})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), version)
	}

	info, err := cat.Latest(ctx, "img")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), info.Version)
	assert.Equal(t, 12, info.FileCount)
}

func TestCatalogConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	_, err := cat.Commit(ctx, catalog.ImageInfo{Name: "img"})
	require.NoError(t, err)

	// Concurrent writers race for version 2
	var wg sync.WaitGroup
	successes := 0
	conflicts := 0
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cat.Commit(ctx, catalog.ImageInfo{Name: "img"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, catalog.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()
	assert.Greater(t, successes, 0, "at least one writer should succeed")
	assert.Equal(t, 5, successes+conflicts)
	t.Logf("successes: %d, conflicts: %d", successes, conflicts)
}

func TestCatalogNotFound(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	_, err := cat.Latest(ctx, "missing")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = cat.Get(ctx, "missing", 1)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCatalogIsolatedNames(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	_, err := cat.Commit(ctx, catalog.ImageInfo{Name: "a", Compression: "lz4"})
	require.NoError(t, err)
	_, err = cat.Commit(ctx, catalog.ImageInfo{Name: "b", Compression: "none"})
	require.NoError(t, err)
	_, err = cat.Commit(ctx, catalog.ImageInfo{Name: "b"})
	require.NoError(t, err)

	infoA, err := cat.Latest(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), infoA.Version)
	assert.Equal(t, "lz4", infoA.Compression)

	infoB, err := cat.Latest(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), infoB.Version)
}

func TestCatalogList(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	_, err := cat.Commit(ctx, catalog.ImageInfo{Name: "b"})
	require.NoError(t, err)
	_, err = cat.Commit(ctx, catalog.ImageInfo{Name: "a"})
	require.NoError(t, err)
	_, err = cat.Commit(ctx, catalog.ImageInfo{Name: "a"})
	require.NoError(t, err)

	all, err := cat.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Name)
	assert.Equal(t, uint64(1), all[0].Version)
	assert.Equal(t, "a", all[1].Name)
	assert.Equal(t, uint64(2), all[1].Version)
	assert.Equal(t, "b", all[2].Name)
}

func TestCatalogDelete(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	_, err := cat.Commit(ctx, catalog.ImageInfo{Name: "img"})
	require.NoError(t, err)

	require.NoError(t, cat.Delete(ctx, "img", 1))

	_, err = cat.Get(ctx, "img", 1)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	// Deleting again is not an error
	require.NoError(t, cat.Delete(ctx, "img", 1))
}

func TestCatalogTimestampsRoundTrip(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(newMockDDBClient(), "flashgo-catalog")

	at := time.Date(2025, 6, 1, 12, 30, 0, 123456789, time.UTC)
	_, err := cat.Commit(ctx, catalog.ImageInfo{Name: "img", CreatedAt: at})
	require.NoError(t, err)

	info, err := cat.Get(ctx, "img", 1)
	require.NoError(t, err)
	assert.True(t, info.CreatedAt.Equal(at))
}
