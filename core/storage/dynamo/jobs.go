package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"doomsday-orchestrator/core/models"
	"doomsday-orchestrator/core/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type jobItem struct {
	SessionID string          `dynamodbav:"session_id"`
	Name      string          `dynamodbav:"name"`
	JobTitle  string          `dynamodbav:"job_title"`
	Strengths string          `dynamodbav:"strengths"`
	Hobbies   string          `dynamodbav:"hobbies"`
	Status    string          `dynamodbav:"status"`
	Verdict   *models.Verdict `dynamodbav:"verdict,omitempty"`
	CreatedAt string          `dynamodbav:"created_at"`
	UpdatedAt string          `dynamodbav:"updated_at"`
}

func (s *Store) PutJob(ctx context.Context, job *models.AnalysisJob) error {
	item, err := attributevalue.MarshalMap(jobItem{
		SessionID: job.SessionID,
		Name:      job.Survey.Name,
		JobTitle:  job.Survey.JobTitle,
		Strengths: job.Survey.Strengths,
		Hobbies:   job.Survey.Hobbies,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Jobs),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put job: %w", err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, sessionID string) (*models.AnalysisJob, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tables.Jobs),
		Key:            jobKey(sessionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if out.Item == nil {
		return nil, storage.ErrNotFound
	}

	var item jobItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &models.AnalysisJob{
		SessionID: item.SessionID,
		Survey: models.Survey{
			Name:      item.Name,
			JobTitle:  item.JobTitle,
			Strengths: item.Strengths,
			Hobbies:   item.Hobbies,
		},
		Status:    models.JobStatus(item.Status),
		Verdict:   item.Verdict,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// CompleteJob flips status and writes the verdict in one UpdateItem
// call, so the transition is atomic at the item level.
func (s *Store) CompleteJob(ctx context.Context, sessionID string, verdict *models.Verdict) error {
	verdictAttr, err := attributevalue.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}
	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tables.Jobs),
		Key:                 jobKey(sessionID),
		UpdateExpression:    aws.String("SET #s = :s, verdict = :v, updated_at = :t"),
		ConditionExpression: aws.String("attribute_exists(session_id)"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: string(models.JobStatusCompleted)},
			":v": verdictAttr,
			":t": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	return translateConditional(err, "complete job")
}

func (s *Store) FailJob(ctx context.Context, sessionID string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tables.Jobs),
		Key:                 jobKey(sessionID),
		UpdateExpression:    aws.String("SET #s = :s, updated_at = :t REMOVE verdict"),
		ConditionExpression: aws.String("attribute_exists(session_id)"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: string(models.JobStatusError)},
			":t": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	return translateConditional(err, "fail job")
}

func jobKey(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"session_id": &types.AttributeValueMemberS{Value: sessionID},
	}
}

func translateConditional(err error, op string) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
