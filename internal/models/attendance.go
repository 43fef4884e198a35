package models

import "time"

// AttendanceStatus is the stored state of an attendance record. A missing
// row means the student has not been marked.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// StatusNotMarked is rendered in reports for occurrences without a row.
const StatusNotMarked = "Not Marked"

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// MarkAttendanceRequest is the payload of a mark attempt. Coordinates are
// required only for present.
type MarkAttendanceRequest struct {
	LessonID       int64    `json:"lesson_id"`
	AttendanceDate string   `json:"attendance_date"`
	Status         string   `json:"status"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// MarkResult acknowledges a successful mark attempt.
type MarkResult struct {
	Status  AttendanceStatus `json:"status"`
	Message string           `json:"message"`
	Written bool             `json:"-"`
}

// AttendanceRecord is a row keyed by student, lesson and date.
type AttendanceRecord struct {
	StudentID      int64            `db:"student_id" json:"student_id"`
	LessonID       int64            `db:"lesson_id" json:"lesson_id"`
	AttendanceDate time.Time        `db:"attendance_date" json:"attendance_date"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Latitude       *float64         `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64         `db:"longitude" json:"longitude,omitempty"`
	MarkedAt       time.Time        `db:"marked_at" json:"marked_at"`
}

// AttendanceMark is a row read back for report aggregation.
type AttendanceMark struct {
	StudentID      int64            `db:"student_id"`
	LessonID       int64            `db:"lesson_id"`
	AttendanceDate string           `db:"attendance_date"`
	Status         AttendanceStatus `db:"status"`
}

// AttendanceStatusResponse answers a status lookup; Status is nil when the
// student has not been marked.
type AttendanceStatusResponse struct {
	LessonID int64             `json:"lesson_id"`
	Date     string            `json:"date"`
	Status   *AttendanceStatus `json:"status"`
}

// AttendanceHistoryRow is one entry of a student's attendance history.
type AttendanceHistoryRow struct {
	AttendanceDate string           `db:"attendance_date" json:"attendance_date"`
	Status         AttendanceStatus `db:"status" json:"status"`
	Subject        string           `db:"subject" json:"subject"`
	DayOfWeek      string           `db:"day_of_week" json:"day_of_week"`
	StartTime      string           `db:"start_time" json:"start_time"`
	EndTime        string           `db:"end_time" json:"end_time"`
}

// ReportRequest filters an attendance report.
type ReportRequest struct {
	GroupID   int64  `form:"group_id" json:"group_id"`
	StartDate string `form:"start_date" json:"start_date,omitempty"`
	EndDate   string `form:"end_date" json:"end_date,omitempty"`
	Subject   string `form:"subject" json:"subject,omitempty"`
}

// SessionEntry is one student's status for a session.
type SessionEntry struct {
	StudentID int64  `json:"student_id"`
	Student   string `json:"student"`
	Status    string `json:"status"`
}

// SessionRow is one lesson occurrence with the status of every student.
type SessionRow struct {
	Date    string         `json:"date"`
	Subject string         `json:"subject"`
	Session []SessionEntry `json:"session"`
}
