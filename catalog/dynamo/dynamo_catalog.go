// Package dynamo implements catalog.Catalog on DynamoDB.
//
// DynamoDB conditional writes give the catalog the atomic compare-and-swap
// that a plain object store lacks, so multiple publishers can commit image
// versions concurrently without losing updates.
//
// Table schema:
//   - Partition key: image_name (string)
//   - Sort key: version (number), monotonically increasing per name
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name flashgo-catalog \
//	  --attribute-definitions AttributeName=image_name,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=image_name,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/flashgo/catalog"
)

// Client is the interface for DynamoDB operations.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Catalog implements catalog.Catalog backed by a DynamoDB table.
type Catalog struct {
	client Client
	table  string
}

var _ catalog.Catalog = (*Catalog)(nil)

// NewCatalog creates a catalog over an existing DynamoDB table.
func NewCatalog(client Client, tableName string) *Catalog {
	return &Catalog{
		client: client,
		table:  tableName,
	}
}

// Commit registers info under the next free version for info.Name.
// The conditional put only succeeds if no item claimed that version yet, so
// two racing publishers cannot both win; the loser gets catalog.ErrConflict.
func (c *Catalog) Commit(ctx context.Context, info catalog.ImageInfo) (uint64, error) {
	current, _, err := c.latestVersion(ctx, info.Name)
	if err != nil {
		return 0, err
	}

	info.Version = current + 1
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.table),
		Item:                infoToItem(info),
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, catalog.ErrConflict
		}
		return 0, fmt.Errorf("dynamo: commit version: %w", err)
	}

	return info.Version, nil
}

// Latest returns the highest committed version for name.
func (c *Catalog) Latest(ctx context.Context, name string) (catalog.ImageInfo, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("image_name = :name"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name": &types.AttributeValueMemberS{Value: name},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return catalog.ImageInfo{}, fmt.Errorf("dynamo: query latest: %w", err)
	}
	if len(resp.Items) == 0 {
		return catalog.ImageInfo{}, catalog.ErrNotFound
	}
	return itemToInfo(resp.Items[0])
}

// Get returns a specific version.
func (c *Catalog) Get(ctx context.Context, name string, version uint64) (catalog.ImageInfo, error) {
	resp, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key:       itemKey(name, version),
	})
	if err != nil {
		return catalog.ImageInfo{}, fmt.Errorf("dynamo: get item: %w", err)
	}
	if len(resp.Item) == 0 {
		return catalog.ImageInfo{}, catalog.ErrNotFound
	}
	return itemToInfo(resp.Item)
}

// List returns all committed versions, ordered by name then version.
func (c *Catalog) List(ctx context.Context) ([]catalog.ImageInfo, error) {
	var all []catalog.ImageInfo
	var startKey map[string]types.AttributeValue

	for {
		resp, err := c.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(c.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamo: scan: %w", err)
		}
		for _, item := range resp.Items {
			info, err := itemToInfo(item)
			if err != nil {
				return nil, err
			}
			all = append(all, info)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Version < all[j].Version
	})
	return all, nil
}

// Delete removes a version. Deleting a missing version is not an error.
func (c *Catalog) Delete(ctx context.Context, name string, version uint64) error {
	_, err := c.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.table),
		Key:       itemKey(name, version),
	})
	if err != nil {
		return fmt.Errorf("dynamo: delete item: %w", err)
	}
	return nil
}

// latestVersion queries for the highest committed version of name.
func (c *Catalog) latestVersion(ctx context.Context, name string) (uint64, bool, error) {
	info, err := c.Latest(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return info.Version, true, nil
}

func itemKey(name string, version uint64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"image_name": &types.AttributeValueMemberS{Value: name},
		"version":    &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
	}
}

func infoToItem(info catalog.ImageInfo) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"image_name":  &types.AttributeValueMemberS{Value: info.Name},
		"version":     &types.AttributeValueMemberN{Value: strconv.FormatUint(info.Version, 10)},
		"created_at":  &types.AttributeValueMemberS{Value: info.CreatedAt.Format(time.RFC3339Nano)},
		"img_size":    &types.AttributeValueMemberN{Value: strconv.FormatInt(info.Size, 10)},
		"checksum":    &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(info.Checksum), 10)},
		"compression": &types.AttributeValueMemberS{Value: info.Compression},
		"file_count":  &types.AttributeValueMemberN{Value: strconv.Itoa(info.FileCount)},
	}
}

func itemToInfo(item map[string]types.AttributeValue) (catalog.ImageInfo, error) {
	var info catalog.ImageInfo

	nameAttr, ok := item["image_name"].(*types.AttributeValueMemberS)
	if !ok {
		return info, errors.New("dynamo: missing image_name attribute")
	}
	info.Name = nameAttr.Value

	version, err := numAttr(item, "version")
	if err != nil {
		return info, err
	}
	info.Version = version

	if attr, ok := item["created_at"].(*types.AttributeValueMemberS); ok {
		t, err := time.Parse(time.RFC3339Nano, attr.Value)
		if err != nil {
			return info, fmt.Errorf("dynamo: parse created_at: %w", err)
		}
		info.CreatedAt = t
	}
	if size, err := numAttr(item, "img_size"); err == nil {
		info.Size = int64(size)
	}
	if checksum, err := numAttr(item, "checksum"); err == nil {
		info.Checksum = uint32(checksum)
	}
	if attr, ok := item["compression"].(*types.AttributeValueMemberS); ok {
		info.Compression = attr.Value
	}
	if count, err := numAttr(item, "file_count"); err == nil {
		info.FileCount = int(count)
	}

	return info, nil
}

func numAttr(item map[string]types.AttributeValue, name string) (uint64, error) {
	attr, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("dynamo: missing %s attribute", name)
	}
	v, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dynamo: parse %s: %w", name, err)
	}
	return v, nil
}
