package model

import "time"

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "SUCCESS"
	NotificationError   NotificationKind = "ERROR"
)

// 位置の確定/失敗ごとに1回だけ発行する通知
type Notification struct {
	ID       string              `json:"id"`
	Kind     NotificationKind    `json:"kind"`
	Reason   LocationErrorReason `json:"reason,omitempty"`
	Message  string              `json:"message"`
	Location *Location           `json:"location,omitempty"`
	At       time.Time           `json:"at"`
}
