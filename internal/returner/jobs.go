package returner

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dandantas/saltstore/internal/database"
	"github.com/dandantas/saltstore/internal/jid"
	"github.com/dandantas/saltstore/internal/sanitize"
)

// SaveLoad persists the load that dispatched a job, keyed by jid inside the
// document. Load keys are escaped with the reversible scheme so job metadata
// can round-trip exactly, unlike the archival full-record path.
func (s *Store) SaveLoad(ctx context.Context, jobID string, load map[string]any) error {
	db, err := s.connect(ctx, "", nil)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	toSave := sanitize.SafeCopy(load).(map[string]any)
	toSave["jid"] = jobID

	slog.Debug("Storing job load", "jid", jobID)

	if err := db.Collection(database.CollectionJobs).Insert(ctx, bson.M(toSave)); err != nil {
		s.metrics.StoreErrors.WithLabelValues("save_load").Inc()
		return err
	}

	s.metrics.DocumentsStored.WithLabelValues(database.CollectionJobs).Inc()
	return nil
}

// SaveMinions is a no-op: this store does not persist the minion list for a
// job. Included for interface consistency with callers that expect it.
func (s *Store) SaveMinions(_ context.Context, _ string, _ []string) error {
	return nil
}

// GetLoad returns the load stored for a job id, or nil when the job is
// unknown. The document is returned as stored, with escaped keys.
func (s *Store) GetLoad(ctx context.Context, jobID string) (map[string]any, error) {
	db, err := s.connect(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)

	doc, err := db.Collection(database.CollectionJobs).FindOne(ctx, bson.M{"jid": jobID})
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("get_load").Inc()
		return nil, err
	}

	s.metrics.Lookups.WithLabelValues("get_load").Inc()
	return doc, nil
}

// GetJids returns every known job id mapped to its formatted job info,
// keeping the first-seen metadata document per id.
func (s *Store) GetJids(ctx context.Context) (map[string]map[string]any, error) {
	db, err := s.connect(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	defer db.Close(ctx)

	groups, err := db.Collection(database.CollectionJobs).GroupFirst(ctx, "jid")
	if err != nil {
		s.metrics.StoreErrors.WithLabelValues("get_jids").Inc()
		return nil, err
	}

	ret := make(map[string]map[string]any, len(groups))
	for j, doc := range groups {
		ret[j] = jid.FormatInstance(j, doc)
	}

	s.metrics.Lookups.WithLabelValues("get_jids").Inc()
	return ret, nil
}

// PrepJid returns the caller-supplied jid when present, otherwise generates
// a fresh one.
func (s *Store) PrepJid(passed string) string {
	if passed != "" {
		return passed
	}
	if s.cfg.UniqueJid {
		return jid.GenUnique()
	}
	return jid.Gen()
}
