package usecase

import "time"

func (r *LocationResolver) SetNotifyTimeout(d time.Duration) {
	r.notifyTimeout = d
}
