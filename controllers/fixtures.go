package controllers

import (
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/PrayerRoom/models"
)

// Test fixture data for use in tests

var prayerColumns = []string{"prayer_id", "created_at", "name", "phone", "content", "is_public", "prayed_count"}

// MockPrayer creates a sample public prayer request
func MockPrayer() models.Prayer {
	return models.Prayer{
		Prayer_ID:    1,
		Created_At:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Name:         "김철수",
		Phone:        "010-1234-5678",
		Content:      "가족의 건강을 위해 기도해주세요",
		Is_Public:    true,
		Prayed_Count: 3,
	}
}

// MockPrivatePrayer creates a sample prayer request visible to pastors only
func MockPrivatePrayer() models.Prayer {
	p := MockPrayer()
	p.Prayer_ID = 2
	p.Is_Public = false
	p.Prayed_Count = 0
	return p
}

// MockPrayerForm creates the form a submitter would post
func MockPrayerForm(isPublic bool) models.PrayerForm {
	return models.PrayerForm{
		Name:     "김철수",
		Phone:    "01012345678",
		Content:  "새 직장을 위해 기도해주세요",
		IsPublic: &isPublic,
	}
}

// MockPrayerRows builds sqlmock rows for a prayers select
func MockPrayerRows(prayers ...models.Prayer) *sqlmock.Rows {
	rows := sqlmock.NewRows(prayerColumns)
	for _, p := range prayers {
		rows.AddRow(p.Prayer_ID, p.Created_At, p.Name, p.Phone, p.Content, p.Is_Public, p.Prayed_Count)
	}
	return rows
}
