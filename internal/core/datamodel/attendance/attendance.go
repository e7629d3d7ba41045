package attendance

import "time"

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLeave   = "Leave"
)

// Attendance is a read-only input; rows are written by the attendance import, never by this service.
type Attendance struct {
	EmpID          int64     `gorm:"column:emp_id;primaryKey"`
	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;primaryKey"`
	Status         string    `gorm:"column:status;not null"`
}

func (Attendance) TableName() string { return "attendance" }
