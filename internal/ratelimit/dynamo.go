package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// windowItem is the per-key counter row as stored in the table.
type windowItem struct {
	Count   int64 `dynamodbav:"cnt"`
	ResetAt int64 `dynamodbav:"reset_at"`
}

// Dynamo is the durable fixed-window limiter. One item per key holds an
// atomic counter and the window reset timestamp. Backend errors admit the
// request: a broken limiter must not take down webhook intake.
type Dynamo struct {
	client dynamoAPI
	table  string
	max    int
	period time.Duration
	now    func() time.Time
}

func NewDynamo(client dynamoAPI, table string, max int, period time.Duration) *Dynamo {
	return &Dynamo{client: client, table: table, max: max, period: period, now: time.Now}
}

func (l *Dynamo) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	keyAttr, err := attributevalue.MarshalMap(struct {
		RateKey string `dynamodbav:"rate_key"`
	}{key})
	if err != nil {
		log.Printf("[ratelimit] dynamo key marshal failed, admitting request: %v", err)
		return true, nil
	}
	reset, _ := attributevalue.Marshal(now.Add(l.period).Unix())
	one, _ := attributevalue.Marshal(1)

	out, err := l.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(l.table),
		Key:              keyAttr,
		UpdateExpression: aws.String("SET reset_at = if_not_exists(reset_at, :reset) ADD cnt :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":reset": reset,
			":one":   one,
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		log.Printf("[ratelimit] dynamo update failed, admitting request: %v", err)
		return true, nil
	}

	var item windowItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		log.Printf("[ratelimit] dynamo attributes unmarshal failed, admitting request: %v", err)
		return true, nil
	}

	if item.ResetAt > 0 && now.Unix() >= item.ResetAt {
		// Window rolled over: start a fresh one counting this request.
		_, err := l.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:        aws.String(l.table),
			Key:              keyAttr,
			UpdateExpression: aws.String("SET cnt = :one, reset_at = :reset"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":one":   one,
				":reset": reset,
			},
		})
		if err != nil {
			log.Printf("[ratelimit] dynamo window reset failed, admitting request: %v", err)
		}
		return true, nil
	}

	return item.Count <= int64(l.max), nil
}
