// Package gateway is the only component that talks to persistent storage.
// It combines the to-do table with the attachment object store.
package gateway

import (
	"context"
	"fmt"
	"time"

	"todo-api/internal/adapters/storage"
	"todo-api/internal/models"
	"todo-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Operation names used in logs and metrics
const (
	OpListByOwner       = "list_by_owner"
	OpCreate            = "create"
	OpUpdate            = "update"
	OpDelete            = "delete"
	OpGenerateUploadURL = "generate_upload_url"
)

// Config holds the storage names and limits the gateway operates with
type Config struct {
	TableName           string
	IndexName           string
	BucketName          string
	SignedURLExpiration time.Duration
}

// UploadURLs is the result of issuing an attachment upload URL
type UploadURLs struct {
	// UploadURL is the short-lived pre-signed PUT URL
	UploadURL string `json:"uploadUrl"`
	// AttachmentURL is the permanent URL recorded on the item
	AttachmentURL string `json:"attachmentUrl"`
}

// Gateway performs every table and object store operation of the API
type Gateway struct {
	todos   repositories.TodoRepository
	objects storage.ObjectStorage
	config  Config
	logger  *logrus.Logger
	metrics *Metrics
}

// New creates a gateway. metrics may be nil.
func New(todos repositories.TodoRepository, objects storage.ObjectStorage, config Config, logger *logrus.Logger, metrics *Metrics) *Gateway {
	if logger == nil {
		logger = logrus.New()
	}
	return &Gateway{
		todos:   todos,
		objects: objects,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// ListByOwner returns every item owned by ownerID
func (g *Gateway) ListByOwner(ctx context.Context, ownerID string) (items []*models.TodoItem, err error) {
	defer g.track(OpListByOwner, time.Now(), &err)

	items, err = g.todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos for %s: %w", ownerID, err)
	}

	g.log(OpListByOwner).WithFields(logrus.Fields{
		"user_id": ownerID,
		"count":   len(items),
	}).Debug("Listed todos")

	return items, nil
}

// Create writes item as-is and returns it
func (g *Gateway) Create(ctx context.Context, item *models.TodoItem) (_ *models.TodoItem, err error) {
	defer g.track(OpCreate, time.Now(), &err)

	if err = g.todos.Put(ctx, item); err != nil {
		return nil, fmt.Errorf("create todo %s: %w", item.TodoID, err)
	}

	g.log(OpCreate).WithFields(logrus.Fields{
		"user_id": item.UserID,
		"todo_id": item.TodoID,
	}).Info("Created todo")

	return item, nil
}

// Update replaces name, dueDate and done on an existing item
func (g *Gateway) Update(ctx context.Context, ownerID, todoID, name, dueDate string, done bool) (err error) {
	defer g.track(OpUpdate, time.Now(), &err)

	err = g.todos.Update(ctx, ownerID, todoID, repositories.TodoUpdate{
		Name:    name,
		DueDate: dueDate,
		Done:    done,
	})
	if err != nil {
		return fmt.Errorf("update todo %s: %w", todoID, err)
	}

	g.log(OpUpdate).WithFields(logrus.Fields{
		"user_id": ownerID,
		"todo_id": todoID,
	}).Info("Updated todo")

	return nil
}

// Delete removes an existing item. The attachment object, if any, is kept.
func (g *Gateway) Delete(ctx context.Context, ownerID, todoID string) (err error) {
	defer g.track(OpDelete, time.Now(), &err)

	if err = g.todos.Delete(ctx, ownerID, todoID); err != nil {
		return fmt.Errorf("delete todo %s: %w", todoID, err)
	}

	g.log(OpDelete).WithFields(logrus.Fields{
		"user_id": ownerID,
		"todo_id": todoID,
	}).Info("Deleted todo")

	return nil
}

// GenerateUploadURL issues a pre-signed PUT URL for the attachment object
// keyed by todoID and records the object's public URL on the item.
func (g *Gateway) GenerateUploadURL(ctx context.Context, ownerID, todoID string) (_ *UploadURLs, err error) {
	defer g.track(OpGenerateUploadURL, time.Now(), &err)

	if err = repositories.RequireKey(ownerID, todoID); err != nil {
		return nil, err
	}

	uploadURL, err := g.objects.PresignUpload(ctx, todoID, g.config.SignedURLExpiration)
	if err != nil {
		return nil, fmt.Errorf("presign upload for %s: %w", todoID, err)
	}

	attachmentURL := g.objects.PublicURL(todoID)
	if err = g.todos.SetAttachmentURL(ctx, ownerID, todoID, attachmentURL); err != nil {
		return nil, fmt.Errorf("record attachment for %s: %w", todoID, err)
	}

	g.log(OpGenerateUploadURL).WithFields(logrus.Fields{
		"user_id":        ownerID,
		"todo_id":        todoID,
		"attachment_url": attachmentURL,
		"expires_in":     g.config.SignedURLExpiration.String(),
	}).Info("Issued attachment upload URL")

	return &UploadURLs{
		UploadURL:     uploadURL,
		AttachmentURL: attachmentURL,
	}, nil
}

func (g *Gateway) log(op string) *logrus.Entry {
	return g.logger.WithFields(logrus.Fields{
		"component": "gateway",
		"operation": op,
		"table":     g.config.TableName,
	})
}

func (g *Gateway) track(op string, start time.Time, errp *error) {
	err := *errp
	g.metrics.record(op, time.Since(start), err)

	if err != nil {
		g.log(op).WithError(err).Warn("Storage operation failed")
	}
}
