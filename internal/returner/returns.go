package returner

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dandantas/saltstore/internal/database"
	"github.com/dandantas/saltstore/internal/model"
	"github.com/dandantas/saltstore/internal/sanitize"
)

// Returner stores one job completion in the saltReturns collection. The
// return value is dot-flattened when it is a document and stored as-is
// otherwise; the full original record is always dot-flattened for archival.
// Inserts are append-only: repeated submissions for the same (jid, minion)
// pair all persist.
func (s *Store) Returner(ctx context.Context, ret *model.Return) error {
	db, err := s.connect(ctx, ret.RetConfig, ret.RetKwargs)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	back := ret.Return
	if m, ok := back.(map[string]any); ok {
		back = sanitize.RemoveDots(m)
	}
	fullRet := sanitize.RemoveDots(ret.FullRecord())

	slog.Debug("Storing return", "jid", ret.Jid, "minion", ret.Minion, "fun", ret.Fun)

	doc := bson.M{
		"minion":   ret.Minion,
		"jid":      ret.Jid,
		"return":   back,
		"fun":      ret.Fun,
		"full_ret": fullRet,
	}
	if ret.Out != "" {
		doc["out"] = ret.Out
	}

	if err := db.Collection(database.CollectionReturns).Insert(ctx, doc); err != nil {
		s.metrics.StoreErrors.WithLabelValues("returner").Inc()
		return err
	}

	s.metrics.DocumentsStored.WithLabelValues(database.CollectionReturns).Inc()
	return nil
}

// GetJid returns all stored returns for a job, keyed by minion id and
// mapped to the archived full record. Unknown jids yield an empty map.
func (s *Store) GetJid(ctx context.Context, jid string) (map[string]any, error) {
	db, err := s.connect(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)

	docs, err := db.Collection(database.CollectionReturns).Find(ctx, bson.M{"jid": jid})
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("get_jid").Inc()
		return nil, err
	}

	ret := make(map[string]any, len(docs))
	for _, doc := range docs {
		minion, ok := doc["minion"].(string)
		if !ok {
			continue
		}
		ret[minion] = doc["full_ret"]
	}

	s.metrics.Lookups.WithLabelValues("get_jid").Inc()
	return ret, nil
}

// GetFun returns one stored return document for the named function. The
// store's default ordering decides which document comes back; no recency
// sort is applied. An empty map means no match.
func (s *Store) GetFun(ctx context.Context, fun string) (map[string]any, error) {
	db, err := s.connect(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)

	doc, err := db.Collection(database.CollectionReturns).FindOne(ctx, bson.M{"fun": fun})
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("get_fun").Inc()
		return nil, err
	}

	s.metrics.Lookups.WithLabelValues("get_fun").Inc()
	if doc == nil {
		return map[string]any{}, nil
	}
	return doc, nil
}

// GetMinions returns the distinct minion ids wrapped in a one-element outer
// slice, the historical shape callers expect. Use ListMinions for the
// flattened list.
func (s *Store) GetMinions(ctx context.Context) ([][]string, error) {
	minions, err := s.ListMinions(ctx)
	if err != nil {
		return nil, err
	}
	return [][]string{minions}, nil
}

// ListMinions returns the distinct minion ids that have stored returns.
func (s *Store) ListMinions(ctx context.Context) ([]string, error) {
	db, err := s.connect(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)

	minions, err := db.Collection(database.CollectionReturns).Distinct(ctx, "minion")
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("get_minions").Inc()
		return nil, err
	}

	s.metrics.Lookups.WithLabelValues("get_minions").Inc()
	return minions, nil
}
