package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nssc-portal/models"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document was modified concurrently")
)

const maxWriteAttempts = 5

// DocumentStore is a keyed JSON document store with shallow-merge writes and
// per-document change subscriptions.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	// Set replaces the whole document.
	Set(ctx context.Context, collection, id string, data map[string]any) (Snapshot, error)
	// Merge upserts: keys in patch overwrite, other keys are kept.
	Merge(ctx context.Context, collection, id string, patch map[string]any) (Snapshot, error)
	// Transact reads the current version, asks fn for a patch and merges it only if
	// nobody wrote in between. fn may run more than once. A nil patch leaves the
	// document untouched and returns the current snapshot.
	Transact(ctx context.Context, collection, id string, fn func(current Snapshot) (map[string]any, error)) (Snapshot, error)
	List(ctx context.Context, collection string, offset, limit int) ([]Snapshot, int64, error)
	Subscribe(ctx context.Context, collection, id string) (*Subscription, error)
}

// GormStore keeps documents in the documents table and versions every write.
type GormStore struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

// NewGormStore builds the store. notifier may be nil, in which case writes are not
// published and Subscribe only yields the current document.
func NewGormStore(db *gorm.DB, notifier Notifier, log *zap.Logger) *GormStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormStore{db: db, notifier: notifier, log: log}
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	row, exists, err := s.load(ctx, collection, id)
	if err != nil {
		return Snapshot{}, err
	}
	if !exists {
		return Snapshot{}, ErrNotFound
	}
	return decodeRow(row)
}

func (s *GormStore) Set(ctx context.Context, collection, id string, data map[string]any) (Snapshot, error) {
	return s.write(ctx, collection, id, func(Snapshot) (map[string]any, error) {
		return copyMap(data), nil
	})
}

func (s *GormStore) Merge(ctx context.Context, collection, id string, patch map[string]any) (Snapshot, error) {
	return s.write(ctx, collection, id, func(current Snapshot) (map[string]any, error) {
		return mergeShallow(current.Data, patch), nil
	})
}

func (s *GormStore) Transact(ctx context.Context, collection, id string, fn func(current Snapshot) (map[string]any, error)) (Snapshot, error) {
	return s.write(ctx, collection, id, func(current Snapshot) (map[string]any, error) {
		patch, err := fn(current)
		if err != nil || patch == nil {
			return nil, err
		}
		return mergeShallow(current.Data, patch), nil
	})
}

func (s *GormStore) List(ctx context.Context, collection string, offset, limit int) ([]Snapshot, int64, error) {
	var (
		rows  []models.Document
		total int64
	)
	q := s.db.WithContext(ctx).Model(&models.Document{}).Where("collection = ?", collection)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", collection, err)
	}
	if err := q.Order("id").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := decodeRow(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, snap)
	}
	return out, total, nil
}

// Subscribe yields the current document (when it exists) followed by every later
// published version. The subscription ends on Close or when ctx is cancelled.
func (s *GormStore) Subscribe(ctx context.Context, collection, id string) (*Subscription, error) {
	sub, sctx := newSubscription(ctx)

	var feed <-chan Snapshot
	if s.notifier != nil {
		var err error
		if feed, err = s.notifier.Listen(sctx, collection, id); err != nil {
			sub.Close()
			return nil, fmt.Errorf("subscribe %s/%s: %w", collection, id, err)
		}
	}

	go func() {
		defer close(sub.updates)
		if snap, err := s.Get(sctx, collection, id); err == nil {
			if !sub.send(sctx, snap) {
				return
			}
		} else if !errors.Is(err, ErrNotFound) {
			s.log.Warn("initial snapshot failed", zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		}
		if feed == nil {
			<-sctx.Done()
			return
		}
		for {
			select {
			case <-sctx.Done():
				return
			case snap, ok := <-feed:
				if !ok || !sub.send(sctx, snap) {
					return
				}
			}
		}
	}()
	return sub, nil
}

func (s *GormStore) load(ctx context.Context, collection, id string) (models.Document, bool, error) {
	var row models.Document
	err := s.db.WithContext(ctx).Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, false, nil
	}
	if err != nil {
		return row, false, fmt.Errorf("load %s/%s: %w", collection, id, err)
	}
	return row, true, nil
}

// write applies build with compare-and-swap on version, retrying when another
// writer got in first.
func (s *GormStore) write(ctx context.Context, collection, id string, build func(current Snapshot) (map[string]any, error)) (Snapshot, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		row, exists, err := s.load(ctx, collection, id)
		if err != nil {
			return Snapshot{}, err
		}

		current := Snapshot{Collection: collection, ID: id, Data: map[string]any{}}
		if exists {
			if current, err = decodeRow(row); err != nil {
				return Snapshot{}, err
			}
		}

		next, err := build(current)
		if err != nil {
			return Snapshot{}, err
		}
		if next == nil {
			return current, nil
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return Snapshot{}, fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}

		now := time.Now().UTC()
		if !exists {
			row = models.Document{Collection: collection, DocID: id, Data: datatypes.JSON(raw), Version: 1}
			if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
				if _, raced, _ := s.load(ctx, collection, id); raced {
					continue
				}
				return Snapshot{}, fmt.Errorf("create %s/%s: %w", collection, id, err)
			}
		} else {
			res := s.db.WithContext(ctx).Model(&models.Document{}).
				Where("id = ? AND version = ?", row.ID, row.Version).
				Updates(map[string]any{"data": datatypes.JSON(raw), "version": row.Version + 1, "updated_at": now})
			if res.Error != nil {
				return Snapshot{}, fmt.Errorf("update %s/%s: %w", collection, id, res.Error)
			}
			if res.RowsAffected == 0 {
				s.log.Debug("version conflict, retrying", zap.String("collection", collection), zap.String("id", id), zap.Int("attempt", attempt+1))
				continue
			}
			row.Version++
			row.UpdatedAt = now
		}

		data := map[string]any{}
		if err := json.Unmarshal(raw, &data); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		snap := Snapshot{Collection: collection, ID: id, Version: row.Version, Data: data, UpdateTime: row.UpdatedAt}
		s.publish(ctx, snap)
		return snap, nil
	}
	return Snapshot{}, ErrConflict
}

// publish failures never fail the write; subscribers catch up on the next version.
func (s *GormStore) publish(ctx context.Context, snap Snapshot) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, snap); err != nil {
		s.log.Warn("publish snapshot failed",
			zap.String("collection", snap.Collection), zap.String("id", snap.ID),
			zap.Int64("version", snap.Version), zap.Error(err))
	}
}

func decodeRow(row models.Document) (Snapshot, error) {
	data := map[string]any{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s/%s: %w", row.Collection, row.DocID, err)
		}
	}
	return Snapshot{
		Collection: row.Collection,
		ID:         row.DocID,
		Version:    row.Version,
		Data:       data,
		UpdateTime: row.UpdatedAt,
	}, nil
}

func mergeShallow(base, patch map[string]any) map[string]any {
	out := copyMap(base)
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
