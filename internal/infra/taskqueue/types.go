package taskqueue

import "time"

// ReminderTask is the unit handed to the dispatcher. The task body
// carries only the reminder identifier; the callback handler re-reads
// everything else from the store when the task fires.
type ReminderTask struct {
	ReminderID string
	UserID     string
	ScheduleAt time.Time
}

type TaskResponse struct {
	Name         string    `json:"name"`
	ScheduleTime time.Time `json:"schedule_time"`
	CreateTime   time.Time `json:"create_time"`
}
