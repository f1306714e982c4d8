package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"edge-gateway/internal/domain"
)

const (
	pkPrefixLead = "LEAD#"
	skLead       = "LEAD#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table for lead records.
type Client struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// New creates a lead store over the given table. ttlDays <= 0 disables the
// TTL attribute, keeping records until manually removed.
func New(api dynamodbAPI, tableName string, ttlDays int) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	var ttl time.Duration
	if ttlDays > 0 {
		ttl = time.Duration(ttlDays) * 24 * time.Hour
	}
	return &Client{api: api, tableName: tableName, ttl: ttl, now: time.Now}, nil
}

func leadPK(id string) string {
	return pkPrefixLead + id
}

// PutLead writes one lead record. The conditional expression guards against
// id collisions overwriting an earlier submission.
func (c *Client) PutLead(ctx context.Context, rec domain.LeadRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("repository: PutLead: record id is required")
	}

	item, err := c.leadItem(rec)
	if err != nil {
		return fmt.Errorf("repository: PutLead encode: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutLead: %w", err)
	}
	return nil
}

func (c *Client) leadItem(rec domain.LeadRecord) (map[string]types.AttributeValue, error) {
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return nil, err
	}

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: leadPK(rec.ID)},
		"SK":         &types.AttributeValueMemberS{Value: skLead},
		"id":         &types.AttributeValueMemberS{Value: rec.ID},
		"ts":         &types.AttributeValueMemberS{Value: rec.CreatedAt},
		"lang":       &types.AttributeValueMemberS{Value: rec.Lang},
		"name":       &types.AttributeValueMemberS{Value: rec.Name},
		"email":      &types.AttributeValueMemberS{Value: rec.Email},
		"phone":      &types.AttributeValueMemberS{Value: rec.Phone},
		"interests":  &types.AttributeValueMemberS{Value: rec.Interests},
		"details":    &types.AttributeValueMemberS{Value: rec.Details},
		"transcript": &types.AttributeValueMemberS{Value: string(transcript)},
		"ip":         &types.AttributeValueMemberS{Value: rec.IP},
		"ua":         &types.AttributeValueMemberS{Value: rec.UserAgent},
	}
	if c.ttl > 0 {
		expiry := c.now().Add(c.ttl).Unix()
		item["ttl"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiry)}
	}
	return item, nil
}
