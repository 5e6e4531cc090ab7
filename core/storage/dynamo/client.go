// Package dynamo implements the job and guestbook stores on DynamoDB.
//
// Jobs live in a table keyed by session_id. Guestbook entries live in
// a table keyed by entry_id with a GSI (gsi_pk = "ALL", range key
// created_at) that serves the newest-first list scan. Reaction counts
// are mutated exclusively through ADD update expressions so concurrent
// reactions never lose increments.
package dynamo

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Tables names the DynamoDB tables and index the stores operate on.
type Tables struct {
	Jobs           string
	Guestbook      string
	GuestbookIndex string
}

// Store is the DynamoDB-backed store.
type Store struct {
	client *dynamodb.Client
	tables Tables
}

// New creates a store using the default AWS credential chain.
func New(ctx context.Context, region string, tables Tables) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &Store{
		client: dynamodb.NewFromConfig(cfg),
		tables: tables,
	}, nil
}
