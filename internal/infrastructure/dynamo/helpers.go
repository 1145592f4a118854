package dynamo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/travel-planner-api/internal/domain"
	"github.com/travel-planner-api/internal/infrastructure/snapshot"
)

const (
	attrSnapshotID = "snapshot_id"
	attrVersion    = "version"
)

// snapshotItem is the single row holding the serialized profile document.
type snapshotItem struct {
	SnapshotID string    `dynamodbav:"snapshot_id"`
	Version    int64     `dynamodbav:"version"`
	Document   string    `dynamodbav:"document"`
	UpdatedAt  time.Time `dynamodbav:"updated_at"`
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func encodeSnapshotItem(id string, snap domain.Snapshot, version int64, now time.Time) (map[string]types.AttributeValue, error) {
	doc, err := snapshot.Encode(snap)
	if err != nil {
		return nil, err
	}
	item, err := attributevalue.MarshalMap(snapshotItem{
		SnapshotID: id,
		Version:    version,
		Document:   string(doc),
		UpdatedAt:  now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot item: %w", err)
	}
	return item, nil
}

func decodeSnapshotItem(item map[string]types.AttributeValue) (domain.Snapshot, int64, error) {
	var it snapshotItem
	if err := attributevalue.UnmarshalMap(item, &it); err != nil {
		return nil, 0, fmt.Errorf("unmarshal snapshot item: %w", err)
	}
	snap, err := snapshot.Decode([]byte(it.Document))
	if err != nil {
		return nil, 0, err
	}
	return snap, it.Version, nil
}

// saveCondition guards a put so it only lands on top of the version last
// read. Version 0 means no row has been seen yet.
func saveCondition(seen int64) (expr string, names map[string]string, values map[string]types.AttributeValue) {
	if seen == 0 {
		return "attribute_not_exists(#id)", map[string]string{"#id": attrSnapshotID}, nil
	}
	return "#v = :v",
		map[string]string{"#v": attrVersion},
		map[string]types.AttributeValue{":v": &types.AttributeValueMemberN{Value: strconv.FormatInt(seen, 10)}}
}
