package stores

import (
	"context"
	"fmt"
	"strconv"

	"github.com/doug-martin/goqu/v9"

	"github.com/PrayerRoom/models"
)

const tallyTable = "device_tally_mark"

// TallyStore remembers, for a single device, which prayers it has marked as prayed for.
type TallyStore interface {
	Has(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string) error
	Remove(ctx context.Context, key string) error
}

func TallyKey(prayerID int) string {
	return "prayed_" + strconv.Itoa(prayerID)
}

// GoquTallyStore keeps tally marks in postgres, partitioned by device id.
type GoquTallyStore struct {
	db       *goqu.Database
	deviceID string
}

func NewGoquTallyStore(db *goqu.Database) *GoquTallyStore {
	return &GoquTallyStore{db: db}
}

// ForDevice returns a store scoped to a single device.
func (s *GoquTallyStore) ForDevice(deviceID string) *GoquTallyStore {
	return &GoquTallyStore{db: s.db, deviceID: deviceID}
}

func (s *GoquTallyStore) Has(ctx context.Context, key string) (bool, error) {
	var count int64
	_, err := s.db.From(tallyTable).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"device_id": s.deviceID, "mark_key": key}).
		ScanValContext(ctx, &count)
	if err != nil {
		return false, fmt.Errorf("read tally mark %s: %w", key, err)
	}
	return count > 0, nil
}

func (s *GoquTallyStore) Set(ctx context.Context, key string) error {
	_, err := s.db.Insert(tallyTable).
		Rows(models.TallyMark{Device_ID: s.deviceID, Mark_Key: key}).
		OnConflict(goqu.DoNothing()).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("write tally mark %s: %w", key, err)
	}
	return nil
}

func (s *GoquTallyStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.Delete(tallyTable).
		Where(goqu.Ex{"device_id": s.deviceID, "mark_key": key}).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete tally mark %s: %w", key, err)
	}
	return nil
}
