package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/travel-planner-api/internal/domain"
)

const profilesSnapshotID = "profiles"

// SnapshotRepo stores the profile snapshot as one DynamoDB item. Each save
// is conditioned on the version read by the preceding load, so a write from
// another process in between is rejected instead of silently overwritten.
// Item size caps the document at 400 KB.
type SnapshotRepo struct {
	client    *dynamodb.Client
	tableName string

	mu      sync.Mutex
	version int64
}

func NewSnapshotRepo(client *dynamodb.Client, tableName string) *SnapshotRepo {
	return &SnapshotRepo{client: client, tableName: tableName}
}

func (r *SnapshotRepo) Load(ctx context.Context) (domain.Snapshot, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrSnapshotID, profilesSnapshotID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get snapshot: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if out.Item == nil {
		r.version = 0
		return domain.Snapshot{}, nil
	}
	snap, version, err := decodeSnapshotItem(out.Item)
	if err != nil {
		return nil, err
	}
	r.version = version
	return snap, nil
}

func (r *SnapshotRepo) Save(ctx context.Context, snap domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, err := encodeSnapshotItem(profilesSnapshotID, snap, r.version+1, time.Now())
	if err != nil {
		return err
	}
	cond, names, values := saveCondition(r.version)
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("snapshot changed concurrently: %w", domain.ErrConflict)
		}
		return fmt.Errorf("dynamo put snapshot: %w", err)
	}
	r.version++
	return nil
}
