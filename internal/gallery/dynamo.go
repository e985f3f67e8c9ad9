package gallery

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// All galleries share one partition; the sort key is the gallery key.
const dynamoPartition = "GALLERY"

// dynamoAPI is the subset of *dynamodb.Client used by DynamoRepository.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoRepository stores galleries in a single DynamoDB table keyed by
// PK/SK string attributes.
type DynamoRepository struct {
	client    dynamoAPI
	tableName string
}

// Compile-time interface check.
var _ Repository = (*DynamoRepository)(nil)

// NewDynamoRepository creates a repository for the given table.
func NewDynamoRepository(client dynamoAPI, tableName string) *DynamoRepository {
	return &DynamoRepository{client: client, tableName: tableName}
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: dynamoPartition},
		"SK": &types.AttributeValueMemberS{Value: id},
	}
}

func (r *DynamoRepository) Get(ctx context.Context, id string) (*Gallery, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.tableName,
		Key:       itemKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem SK=%s: %w", id, err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return decodeItem(id, result.Item)
}

func decodeItem(id string, item map[string]types.AttributeValue) (*Gallery, error) {
	var d document
	if err := attributevalue.UnmarshalMap(item, &d); err != nil {
		return nil, fmt.Errorf("unmarshal gallery %s: %w", id, err)
	}
	g, err := fromDocument(id, &d)
	if err != nil {
		return nil, fmt.Errorf("gallery %s: %w", id, err)
	}
	return g, nil
}

func (r *DynamoRepository) List(ctx context.Context) ([]*Gallery, error) {
	input := &dynamodb.QueryInput{
		TableName:              &r.tableName,
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: dynamoPartition},
		},
	}

	var out []*Gallery
	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("Query PK=%s: %w", dynamoPartition, err)
		}
		for _, item := range result.Items {
			var id string
			if sk, ok := item["SK"].(*types.AttributeValueMemberS); ok {
				id = sk.Value
			}
			g, err := decodeItem(id, item)
			if err != nil {
				log.Warn().Err(err).Str("gallery", id).Msg("Skipping unparsable gallery item")
				continue
			}
			out = append(out, g)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return out, nil
}

func (r *DynamoRepository) Put(ctx context.Context, g *Gallery) error {
	item, err := attributevalue.MarshalMap(toDocument(g))
	if err != nil {
		return fmt.Errorf("marshal gallery %s: %w", g.ID, err)
	}
	for k, v := range itemKey(g.ID) {
		item[k] = v
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem SK=%s: %w", g.ID, err)
	}

	log.Debug().Str("gallery", g.ID).Str("table", r.tableName).Msg("Gallery persisted to DynamoDB")
	return nil
}

func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &r.tableName,
		Key:       itemKey(id),
	})
	if err != nil {
		return fmt.Errorf("DeleteItem SK=%s: %w", id, err)
	}
	return nil
}
