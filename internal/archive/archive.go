// Package archive indexes terminal notifications into Elasticsearch for
// offline inspection. Indexing is best-effort and never affects delivery
// state.
package archive

import (
	"context"
	"encoding/json"
	"time"

	"notifyd/internal/common/database"
	"notifyd/internal/common/logger"
	"notifyd/internal/models"
)

// Indexer is the sink interface consumed by the delivery tracker.
type Indexer interface {
	IndexTerminal(n *models.Notification)
}

// ElasticsearchIndexer writes one document per terminal notification.
type ElasticsearchIndexer struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewElasticsearchIndexer(es *database.ElasticsearchClient, index string, log logger.Logger) *ElasticsearchIndexer {
	return &ElasticsearchIndexer{es: es, index: index, logger: log}
}

func (i *ElasticsearchIndexer) IndexTerminal(n *models.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		i.logger.Error("archive marshal failed", map[string]interface{}{
			"notification_id": n.NotificationID,
			"error":           err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.es.Index(ctx, i.index, n.NotificationID, body); err != nil {
		i.logger.Warn("archive index failed", map[string]interface{}{
			"notification_id": n.NotificationID,
			"status":          n.Status.String(),
			"error":           err.Error(),
		})
		return
	}

	i.logger.Debug("notification archived", map[string]interface{}{
		"notification_id": n.NotificationID,
		"status":          n.Status.String(),
	})
}

// NopIndexer discards everything, used when no archive backend is configured.
type NopIndexer struct{}

func (NopIndexer) IndexTerminal(*models.Notification) {}
