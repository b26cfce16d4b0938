// Package dynamo stores to-do items in a DynamoDB table keyed by
// (userId, todoId) with a global secondary index on userId.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"todo-api/internal/models"
	"todo-api/internal/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// API is the subset of the DynamoDB client used by the repository
type API interface {
	dynamodb.QueryAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

const (
	attrUserID        = "userId"
	attrTodoID        = "todoId"
	attrName          = "name"
	attrDueDate       = "dueDate"
	attrDone          = "done"
	attrAttachmentURL = "attachmentUrl"
)

// TodoRepository implements repositories.TodoRepository on DynamoDB
type TodoRepository struct {
	client API
	table  string
	index  string
	logger *logrus.Logger
}

var _ repositories.TodoRepository = (*TodoRepository)(nil)

// NewTodoRepository creates a repository for the given table and owner index
func NewTodoRepository(client API, table, index string, logger *logrus.Logger) *TodoRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &TodoRepository{
		client: client,
		table:  table,
		index:  index,
		logger: logger,
	}
}

// ListByOwner queries the owner index and drains every result page
func (r *TodoRepository) ListByOwner(ctx context.Context, userID string) ([]*models.TodoItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is empty", repositories.ErrInvalidID)
	}

	keyCond := expression.Key(attrUserID).Equal(expression.Value(userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, repositories.NewRepositoryError("query", r.index, "", fmt.Errorf("build key condition: %w", err))
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(r.index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	items := make([]*models.TodoItem, 0)
	pages := 0
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, r.classify("query", "", err)
		}
		pages++

		var page []*models.TodoItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, repositories.NewRepositoryError("query", r.index, "", fmt.Errorf("unmarshal items: %w", err))
		}
		items = append(items, page...)
	}

	r.logger.WithFields(logrus.Fields{
		"table":   r.table,
		"index":   r.index,
		"user_id": userID,
		"count":   len(items),
		"pages":   pages,
	}).Debug("Listed todos by owner")

	return items, nil
}

// Get retrieves an item by its composite key
func (r *TodoRepository) Get(ctx context.Context, userID, todoID string) (*models.TodoItem, error) {
	if err := repositories.RequireKey(userID, todoID); err != nil {
		return nil, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       itemKey(userID, todoID),
	})
	if err != nil {
		return nil, r.classify("get", repositories.ItemKey(userID, todoID), err)
	}
	if out.Item == nil {
		return nil, repositories.NotFoundError("get", r.table, userID, todoID)
	}

	var item models.TodoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, repositories.NewRepositoryError("get", r.table, repositories.ItemKey(userID, todoID), fmt.Errorf("unmarshal item: %w", err))
	}

	return &item, nil
}

// Put writes the full item unconditionally
func (r *TodoRepository) Put(ctx context.Context, item *models.TodoItem) error {
	if err := item.Validate(); err != nil {
		return repositories.ValidationError("put", r.table, err)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return repositories.NewRepositoryError("put", r.table, repositories.ItemKey(item.UserID, item.TodoID), fmt.Errorf("marshal item: %w", err))
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return r.classify("put", repositories.ItemKey(item.UserID, item.TodoID), err)
	}

	r.logger.WithFields(logrus.Fields{
		"table":   r.table,
		"user_id": item.UserID,
		"todo_id": item.TodoID,
	}).Debug("Stored todo")

	return nil
}

// Update sets name, dueDate and done on an existing item
func (r *TodoRepository) Update(ctx context.Context, userID, todoID string, update repositories.TodoUpdate) error {
	set := expression.
		Set(expression.Name(attrName), expression.Value(update.Name)).
		Set(expression.Name(attrDueDate), expression.Value(update.DueDate)).
		Set(expression.Name(attrDone), expression.Value(update.Done))

	return r.updateExisting(ctx, "update", userID, todoID, set)
}

// SetAttachmentURL records the public attachment URL on an existing item
func (r *TodoRepository) SetAttachmentURL(ctx context.Context, userID, todoID, url string) error {
	set := expression.Set(expression.Name(attrAttachmentURL), expression.Value(url))

	return r.updateExisting(ctx, "set_attachment_url", userID, todoID, set)
}

func (r *TodoRepository) updateExisting(ctx context.Context, op, userID, todoID string, set expression.UpdateBuilder) error {
	if err := repositories.RequireKey(userID, todoID); err != nil {
		return err
	}

	expr, err := expression.NewBuilder().
		WithUpdate(set).
		WithCondition(keyExists()).
		Build()
	if err != nil {
		return repositories.NewRepositoryError(op, r.table, repositories.ItemKey(userID, todoID), fmt.Errorf("build update expression: %w", err))
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       itemKey(userID, todoID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return repositories.NotFoundError(op, r.table, userID, todoID)
		}
		return r.classify(op, repositories.ItemKey(userID, todoID), err)
	}

	return nil
}

// Delete removes an existing item
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	if err := repositories.RequireKey(userID, todoID); err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithCondition(keyExists()).Build()
	if err != nil {
		return repositories.NewRepositoryError("delete", r.table, repositories.ItemKey(userID, todoID), fmt.Errorf("build condition: %w", err))
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.table),
		Key:                       itemKey(userID, todoID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return repositories.NotFoundError("delete", r.table, userID, todoID)
		}
		return r.classify("delete", repositories.ItemKey(userID, todoID), err)
	}

	return nil
}

func itemKey(userID, todoID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberS{Value: userID},
		attrTodoID: &types.AttributeValueMemberS{Value: todoID},
	}
}

func keyExists() expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name(attrTodoID))
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// classify maps SDK errors onto the repository error taxonomy
func (r *TodoRepository) classify(op, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return repositories.NewRepositoryError(op, r.table, key, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException",
			"RequestLimitExceeded", "InternalServerError", "ServiceUnavailable":
			return repositories.NewRepositoryError(op, r.table, key, fmt.Errorf("%w: %s", repositories.ErrUnavailable, apiErr.ErrorMessage()))
		case "ResourceNotFoundException":
			return repositories.NewRepositoryError(op, r.table, key, fmt.Errorf("%w: %s", repositories.ErrConnection, apiErr.ErrorMessage()))
		}
	}

	return repositories.NewRepositoryError(op, r.table, key, err)
}
