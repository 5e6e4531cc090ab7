package dynamo

import (
	"context"
	"fmt"
	"time"

	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Single GSI partition: every entry shares one partition key so the
// index range key (created_at) yields a global newest-first ordering.
const gsiPartition = "ALL"

type entryItem struct {
	EntryID   string         `dynamodbav:"entry_id"`
	CreatedAt string         `dynamodbav:"created_at"`
	GSIPK     string         `dynamodbav:"gsi_pk"`
	SessionID string         `dynamodbav:"session_id"`
	JobTitle  string         `dynamodbav:"job_title"`
	DDay      int            `dynamodbav:"dday"`
	Message   string         `dynamodbav:"message"`
	Reactions map[string]int `dynamodbav:"reactions"`
}

func (s *Store) AppendEntry(ctx context.Context, entry *models.GuestbookEntry) error {
	item, err := attributevalue.MarshalMap(entryItem{
		EntryID:   entry.EntryID,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		GSIPK:     gsiPartition,
		SessionID: entry.SessionID,
		JobTitle:  entry.JobTitle,
		DDay:      entry.DDay,
		Message:   entry.Message,
		Reactions: entry.Reactions,
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tables.Guestbook),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
	})
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, limit int, cursor string) ([]*models.GuestbookEntry, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tables.Guestbook),
		IndexName:              aws.String(s.tables.GuestbookIndex),
		KeyConditionExpression: aws.String("gsi_pk = :all"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":all": &types.AttributeValueMemberS{Value: gsiPartition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	}
	if cursor != "" {
		createdAt, entryID, err := storage.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"entry_id":   &types.AttributeValueMemberS{Value: entryID},
			"gsi_pk":     &types.AttributeValueMemberS{Value: gsiPartition},
			"created_at": &types.AttributeValueMemberS{Value: createdAt.Format(time.RFC3339Nano)},
		}
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("list entries: %w", err)
	}

	entries := make([]*models.GuestbookEntry, 0, len(out.Items))
	for _, raw := range out.Items {
		var item entryItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, "", fmt.Errorf("unmarshal entry: %w", err)
		}
		createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
		entries = append(entries, &models.GuestbookEntry{
			EntryID:   item.EntryID,
			CreatedAt: createdAt,
			SessionID: item.SessionID,
			JobTitle:  item.JobTitle,
			DDay:      item.DDay,
			Message:   item.Message,
			Reactions: item.Reactions,
		})
	}

	next := ""
	if out.LastEvaluatedKey != nil && len(entries) > 0 {
		last := entries[len(entries)-1]
		next = storage.EncodeCursor(last.CreatedAt, last.EntryID)
	}
	return entries, next, nil
}

// AddReaction bumps one counter with a single ADD expression. The
// increment happens server-side, so simultaneous reactions from any
// number of callers all land.
func (s *Store) AddReaction(ctx context.Context, entryID, emoji string) (map[string]int, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tables.Guestbook),
		Key:                 map[string]types.AttributeValue{"entry_id": &types.AttributeValueMemberS{Value: entryID}},
		UpdateExpression:    aws.String("ADD reactions.#e :inc"),
		ConditionExpression: aws.String("attribute_exists(entry_id)"),
		ExpressionAttributeNames: map[string]string{
			"#e": emoji,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err := translateConditional(err, "add reaction"); err != nil {
		return nil, err
	}

	var reactions map[string]int
	if attr, ok := out.Attributes["reactions"]; ok {
		if err := attributevalue.Unmarshal(attr, &reactions); err != nil {
			return nil, fmt.Errorf("unmarshal reactions: %w", err)
		}
	}
	return reactions, nil
}
