package models

import "time"

type TallyMark struct {
	Device_ID       string    `json:"deviceId" db:"device_id"`
	Mark_Key        string    `json:"markKey" db:"mark_key"`
	Datetime_Create time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
}
