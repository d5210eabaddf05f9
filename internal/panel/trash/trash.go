// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package trash implements soft deletion.

A record moves between three states:

	Active ──SoftDelete──▶ Trashed ──Restore──▶ Active
	                          │
	                          └──ForceDelete──▶ gone

"Permanently deletable" is derived from the deletion timestamp and the
retention period; it is never stored.
*/
package trash

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/panelkit/internal/panel/entity"
	"github.com/taibuivan/panelkit/internal/panel/observer"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/store"
	"github.com/taibuivan/panelkit/pkg/pointer"
	"github.com/taibuivan/panelkit/pkg/slice"
)

// Config is the per-resource trash configuration.
type Config struct {
	// RetentionDays of zero uses the service default.
	RetentionDays int
}

// SoftDeletable is implemented by resources overriding the retention period.
// Soft deletion itself is enabled by [entity.Model.SoftDeletes].
type SoftDeletable interface {
	TrashConfig() Config
}

// Service moves records in and out of the trash.
type Service struct {
	store      store.Store
	dispatcher *observer.Dispatcher
	logger     *slog.Logger
	retention  int
	now        func() time.Time
}

// NewService builds the trash service. defaultRetention applies to resources
// without their own [Config].
func NewService(st store.Store, dispatcher *observer.Dispatcher, logger *slog.Logger, defaultRetention int) *Service {
	if defaultRetention <= 0 {
		defaultRetention = constants.DefaultTrashRetentionDays
	}
	return &Service{store: st, dispatcher: dispatcher, logger: logger, retention: defaultRetention, now: time.Now}
}

// Supports reports whether records of t can be trashed.
func Supports(t *resource.Type) bool {
	return t.Model().SoftDeletes
}

// RetentionDays returns how long trashed records of t are kept.
func (service *Service) RetentionDays(t *resource.Type) int {
	if declared, ok := t.Resource().(SoftDeletable); ok {
		if days := declared.TrashConfig().RetentionDays; days > 0 {
			return days
		}
	}
	return service.retention
}

// # Transitions

// SoftDelete stamps the deletion time. It returns false when the type does
// not soft delete or the record is already trashed.
func (service *Service) SoftDelete(ctx context.Context, t *resource.Type, record *entity.Record) (bool, error) {
	if !Supports(t) {
		return false, nil
	}
	moved, err := service.commit(ctx, t, single(record), service.softDelete)
	return moved > 0, err
}

// Restore clears the deletion time. It returns false for a record that is not trashed.
func (service *Service) Restore(ctx context.Context, t *resource.Type, record *entity.Record) (bool, error) {
	if !Supports(t) {
		return false, nil
	}
	moved, err := service.commit(ctx, t, single(record), service.restore)
	return moved > 0, err
}

// ForceDelete removes the record for good. It returns false when the type
// does not soft delete; such records are deleted through the regular path.
func (service *Service) ForceDelete(ctx context.Context, t *resource.Type, record *entity.Record) (bool, error) {
	if !Supports(t) {
		return false, nil
	}
	moved, err := service.commit(ctx, t, single(record), service.forceDelete)
	return moved > 0, err
}

// change is a written transition whose "-ed" event waits for the commit.
type change struct {
	event  observer.Event
	record *entity.Record
	revert func()
}

// step writes one transition inside a transaction. A nil change means the
// record was already in the target state.
type step func(ctx context.Context, t *resource.Type, record *entity.Record) (*change, error)

func (service *Service) softDelete(ctx context.Context, t *resource.Type, record *entity.Record) (*change, error) {
	if record.Trashed() {
		return nil, nil
	}
	return service.write(ctx, t, record, observer.Deleting, observer.Deleted, func(ctx context.Context) error {
		record.Set(entity.ColumnDeletedAt, service.now().UTC())
		return service.store.Update(ctx, record)
	})
}

func (service *Service) restore(ctx context.Context, t *resource.Type, record *entity.Record) (*change, error) {
	if !record.Trashed() {
		return nil, nil
	}
	return service.write(ctx, t, record, observer.Restoring, observer.Restored, func(ctx context.Context) error {
		record.Set(entity.ColumnDeletedAt, nil)
		return service.store.Update(ctx, record)
	})
}

func (service *Service) forceDelete(ctx context.Context, t *resource.Type, record *entity.Record) (*change, error) {
	return service.write(ctx, t, record, observer.ForceDeleting, observer.ForceDeleted, func(ctx context.Context) error {
		return service.store.Delete(ctx, record)
	})
}

// write runs the "-ing" event and the store call. On failure the record is
// put back as it was.
func (service *Service) write(ctx context.Context, t *resource.Type, record *entity.Record, before, after observer.Event, apply func(ctx context.Context) error) (*change, error) {
	revert := record.Checkpoint()
	if err := service.dispatcher.Dispatch(ctx, t.URIKey(), before, record); err != nil {
		revert()
		return nil, err
	}
	if err := apply(ctx); err != nil {
		revert()
		return nil, err
	}
	return &change{event: after, record: record, revert: revert}, nil
}

// single loads exactly one already fetched record.
func single(record *entity.Record) func(context.Context) ([]*entity.Record, error) {
	return func(context.Context) ([]*entity.Record, error) { return []*entity.Record{record}, nil }
}

/*
commit loads records and applies next to each of them in one transaction.

Only once the transaction has committed are the "-ed" events delivered. When
any step fails, every record touched so far is reverted in memory and no
event is delivered.

Returns:
  - int: how many records changed state
*/
func (service *Service) commit(ctx context.Context, t *resource.Type, load func(context.Context) ([]*entity.Record, error), next step) (int, error) {
	var changes []*change
	err := service.store.Transaction(ctx, func(ctx context.Context) error {
		records, err := load(ctx)
		if err != nil {
			return err
		}
		for _, record := range records {
			changed, err := next(ctx, t, record)
			if err != nil {
				return err
			}
			if changed != nil {
				changes = append(changes, changed)
			}
		}
		return nil
	})
	if err != nil {
		for i := len(changes) - 1; i >= 0; i-- {
			changes[i].revert()
		}
		return 0, err
	}

	for _, changed := range changes {
		_ = service.dispatcher.Dispatch(ctx, t.URIKey(), changed.event, changed.record)
	}
	return len(changes), nil
}

// # Retention

// DaysSinceDeletion returns whole days since record was trashed, or nil.
func (service *Service) DaysSinceDeletion(record *entity.Record) *int {
	deletedAt := record.DeletedAt()
	if deletedAt == nil {
		return nil
	}
	return pointer.To(int(service.now().Sub(*deletedAt).Hours() / 24))
}

// IsPermanentlyDeletable reports whether record has been trashed for at
// least the retention period of t.
func (service *Service) IsPermanentlyDeletable(t *resource.Type, record *entity.Record) bool {
	days := service.DaysSinceDeletion(record)
	return days != nil && *days >= service.RetentionDays(t)
}

// # Bulk

// BulkRestore restores the trashed records among keys and returns how many moved.
func (service *Service) BulkRestore(ctx context.Context, t *resource.Type, keys []string) (int, error) {
	return service.bulk(ctx, t, keys, store.OnlyTrashed, service.restore)
}

// BulkForceDelete permanently deletes the records among keys, trashed or not.
func (service *Service) BulkForceDelete(ctx context.Context, t *resource.Type, keys []string) (int, error) {
	return service.bulk(ctx, t, keys, store.WithTrashed, service.forceDelete)
}

// bulk applies next to the records among keys. Either every record moves or
// none does.
func (service *Service) bulk(ctx context.Context, t *resource.Type, keys []string, mode store.TrashedMode, next step) (int, error) {
	if !Supports(t) || len(keys) == 0 {
		return 0, nil
	}
	return service.commit(ctx, t, func(ctx context.Context) ([]*entity.Record, error) {
		q := store.Query{Trashed: mode}
		q.WhereIn(t.Model().KeyName(), slice.Any(keys)...)
		records, _, err := service.store.Select(ctx, t.Model(), q)
		return records, err
	}, next)
}

// CleanupOldTrashed force deletes every record of t trashed for longer than
// its retention period. It is meant to run from a scheduler.
func (service *Service) CleanupOldTrashed(ctx context.Context, t *resource.Type) (int, error) {
	if !Supports(t) {
		return 0, nil
	}

	records, _, err := service.store.Select(ctx, t.Model(), store.Query{Trashed: store.OnlyTrashed})
	if err != nil {
		return 0, err
	}

	expired := slice.Map(slice.Filter(records, func(record *entity.Record) bool {
		return service.IsPermanentlyDeletable(t, record)
	}), (*entity.Record).KeyString)

	deleted, err := service.BulkForceDelete(ctx, t, expired)
	if err != nil {
		return 0, err
	}

	service.logger.InfoContext(ctx, "trash_cleaned",
		slog.String("resource", t.URIKey()),
		slog.Int("deleted", deleted),
		slog.Int("retention_days", service.RetentionDays(t)),
	)
	return deleted, nil
}
