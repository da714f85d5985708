package stores

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/PrayerRoom/models"
)

const prayersTable = "prayers"

// PrayerQuery is a set of exact-match filters over the prayers table. Nil
// filters are not applied.
type PrayerQuery struct {
	Name        *string
	Phone       *string
	IsPublic    *bool
	NewestFirst bool
}

type RecordStore interface {
	Select(ctx context.Context, q PrayerQuery) ([]models.Prayer, error)
	Insert(ctx context.Context, p models.PrayerCreate) error
	Update(ctx context.Context, prayerID int, fields models.PrayerUpdate) error
}

type GoquRecordStore struct {
	db *goqu.Database
}

func NewGoquRecordStore(db *goqu.Database) *GoquRecordStore {
	return &GoquRecordStore{db: db}
}

func (s *GoquRecordStore) Select(ctx context.Context, q PrayerQuery) ([]models.Prayer, error) {
	where := goqu.Ex{}
	if q.Name != nil {
		where["name"] = *q.Name
	}
	if q.Phone != nil {
		where["phone"] = *q.Phone
	}
	if q.IsPublic != nil {
		where["is_public"] = *q.IsPublic
	}

	query := s.db.From(prayersTable).
		Select("prayer_id", "created_at", "name", "phone", "content", "is_public", "prayed_count")
	if len(where) > 0 {
		query = query.Where(where)
	}
	if q.NewestFirst {
		query = query.Order(goqu.C("created_at").Desc())
	} else {
		query = query.Order(goqu.C("prayer_id").Asc())
	}

	var prayers []models.Prayer
	if err := query.ScanStructsContext(ctx, &prayers); err != nil {
		return nil, fmt.Errorf("select prayers: %w", err)
	}
	return prayers, nil
}

func (s *GoquRecordStore) Insert(ctx context.Context, p models.PrayerCreate) error {
	_, err := s.db.Insert(prayersTable).Rows(p).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert prayer: %w", err)
	}
	return nil
}

func (s *GoquRecordStore) Update(ctx context.Context, prayerID int, fields models.PrayerUpdate) error {
	record := updateRecord(fields)
	if len(record) == 0 {
		return nil
	}

	result, err := s.db.Update(prayersTable).
		Set(record).
		Where(goqu.C("prayer_id").Eq(prayerID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update prayer %d: %w", prayerID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update prayer %d: %w", prayerID, err)
	}
	if rows == 0 {
		return fmt.Errorf("update prayer %d: %w", prayerID, ErrNotFound)
	}
	return nil
}

func updateRecord(fields models.PrayerUpdate) goqu.Record {
	record := goqu.Record{}
	if fields.Content != nil {
		record["content"] = *fields.Content
	}
	if fields.Is_Public != nil {
		record["is_public"] = *fields.Is_Public
	}
	if fields.Created_At != nil {
		record["created_at"] = *fields.Created_At
	}
	if fields.Prayed_Count != nil {
		record["prayed_count"] = *fields.Prayed_Count
	}
	return record
}
