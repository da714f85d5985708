package models

import "time"

type Prayer struct {
	Prayer_ID    int       `json:"id" db:"prayer_id" goqu:"skipinsert"`
	Created_At   time.Time `json:"createdAt" db:"created_at" goqu:"skipinsert"`
	Name         string    `json:"name" db:"name"`
	Phone        string    `json:"-" db:"phone"`
	Content      string    `json:"content" db:"content"`
	Is_Public    bool      `json:"isPublic" db:"is_public"`
	Prayed_Count int       `json:"prayedCount" db:"prayed_count" goqu:"skipinsert"`
}

// PrayerCreate is the insert shape; prayer_id, created_at and prayed_count are
// assigned by the database.
type PrayerCreate struct {
	Name      string `json:"name" db:"name"`
	Phone     string `json:"phone" db:"phone"`
	Content   string `json:"content" db:"content"`
	Is_Public bool   `json:"isPublic" db:"is_public"`
}

// PrayerUpdate is a partial update keyed by prayer_id. Nil fields are left as is.
type PrayerUpdate struct {
	Content      *string
	Is_Public    *bool
	Created_At   *time.Time
	Prayed_Count *int
}

// PrayerForm is what a submitter types in. Phone is kept exactly as entered
// (after live formatting) so it can be echoed back to the same submitter.
type PrayerForm struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Content  string `json:"content"`
	IsPublic *bool  `json:"isPublic"`
}

// PrayerCard is the public projection shown while browsing. It never carries the phone.
type PrayerCard struct {
	Prayer_ID    int       `json:"id"`
	Name         string    `json:"name"`
	Content      string    `json:"content"`
	Created_At   time.Time `json:"createdAt"`
	Prayed_Count int       `json:"prayedCount"`
}

func (p Prayer) Card() PrayerCard {
	return PrayerCard{
		Prayer_ID:    p.Prayer_ID,
		Name:         p.Name,
		Content:      p.Content,
		Created_At:   p.Created_At,
		Prayed_Count: p.Prayed_Count,
	}
}
