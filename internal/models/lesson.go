package models

import (
	"fmt"

	"github.com/geoattend/attendance-api/pkg/geo"
	"github.com/geoattend/attendance-api/pkg/schedule"
)

// Lesson is a weekly recurring session as stored.
type Lesson struct {
	ID         int64  `db:"lesson_id" json:"lesson_id"`
	SubjectID  int64  `db:"subject_id" json:"subject_id"`
	TeacherID  int64  `db:"teacher_id" json:"teacher_id"`
	GroupID    int64  `db:"group_id" json:"group_id"`
	LocationID int64  `db:"location_id" json:"location_id"`
	DayOfWeek  string `db:"day_of_week" json:"day_of_week"`
	StartTime  string `db:"start_time" json:"start_time"`
	EndTime    string `db:"end_time" json:"end_time"`
	StartDate  string `db:"start_date" json:"start_date"`
	EndDate    string `db:"end_date" json:"end_date"`
}

// LessonSchedule is a lesson joined with its names and location.
type LessonSchedule struct {
	Lesson
	SubjectName  string  `db:"subject_name" json:"subject"`
	TeacherName  string  `db:"teacher_name" json:"teacher"`
	GroupName    string  `db:"group_name" json:"group"`
	LocationName string  `db:"location_name" json:"location"`
	Latitude     float64 `db:"latitude" json:"latitude"`
	Longitude    float64 `db:"longitude" json:"longitude"`
}

// Recurrence parses the stored window into a schedule recurrence.
func (l Lesson) Recurrence() (schedule.Recurrence, error) {
	start, err := schedule.ParseDate(l.StartDate)
	if err != nil {
		return schedule.Recurrence{}, fmt.Errorf("lesson %d start date: %w", l.ID, err)
	}
	end, err := schedule.ParseDate(l.EndDate)
	if err != nil {
		return schedule.Recurrence{}, fmt.Errorf("lesson %d end date: %w", l.ID, err)
	}
	return schedule.Recurrence{DayOfWeek: l.DayOfWeek, StartDate: start, EndDate: end}, nil
}

// Point returns the lesson location.
func (l LessonSchedule) Point() geo.Point {
	return geo.Point{Lat: l.Latitude, Lon: l.Longitude}
}

// CreateLessonRequest is the admin payload for a new lesson.
type CreateLessonRequest struct {
	SubjectID  int64  `json:"subject_id" validate:"required,gt=0"`
	TeacherID  int64  `json:"teacher_id" validate:"required,gt=0"`
	GroupID    int64  `json:"group_id" validate:"required,gt=0"`
	LocationID int64  `json:"location_id" validate:"required,gt=0"`
	DayOfWeek  string `json:"day_of_week" validate:"required,weekday"`
	StartTime  string `json:"start_time" validate:"required,clock"`
	EndTime    string `json:"end_time" validate:"required,clock"`
	StartDate  string `json:"start_date" validate:"required,isodate"`
	EndDate    string `json:"end_date" validate:"required,isodate"`
}

// TimetableEntry is a lesson occurring on a given date with the caller's
// attendance status.
type TimetableEntry struct {
	LessonID  int64             `db:"lesson_id" json:"lesson_id"`
	Subject   string            `db:"subject_name" json:"subject"`
	Teacher   string            `db:"teacher_name" json:"teacher"`
	Location  string            `db:"location_name" json:"location"`
	Latitude  float64           `db:"latitude" json:"latitude"`
	Longitude float64           `db:"longitude" json:"longitude"`
	DayOfWeek string            `db:"day_of_week" json:"day_of_week"`
	StartTime string            `db:"start_time" json:"start_time"`
	EndTime   string            `db:"end_time" json:"end_time"`
	StartDate string            `db:"start_date" json:"start_date"`
	EndDate   string            `db:"end_date" json:"end_date"`
	Status    *AttendanceStatus `db:"status" json:"status"`
}
