package returner

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dandantas/saltstore/internal/database"
)

// EventReturn persists a system event. When given several events only the
// first is stored, matching the historical contract. Event documents are
// inserted unmodified: unlike returns and loads, event keys are not
// sanitized.
func (s *Store) EventReturn(ctx context.Context, events []map[string]any) error {
	if len(events) == 0 {
		return nil
	}
	event := events[0]
	if event == nil {
		return nil
	}

	db, err := s.connect(ctx, "", nil)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	slog.Debug("Storing event", "tag", event["tag"])

	if err := db.Collection(database.CollectionEvents).Insert(ctx, bson.M(event)); err != nil {
		s.metrics.StoreErrors.WithLabelValues("event_return").Inc()
		return err
	}

	s.metrics.DocumentsStored.WithLabelValues(database.CollectionEvents).Inc()
	return nil
}
