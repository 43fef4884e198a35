package models

// StudentDashboard summarises a student's attendance and day.
type StudentDashboard struct {
	AttendanceRate  string       `json:"attendance_rate"`
	SubjectCount    int          `json:"subject_count"`
	UpcomingLessons int          `json:"upcoming_lessons"`
	TodayClasses    []TodayClass `json:"today_classes"`
}

// TodayClass is a compact lesson entry for the dashboard.
type TodayClass struct {
	Time    string `json:"time"`
	Subject string `json:"subject"`
	Room    string `json:"room"`
}

// AttendanceCounts aggregates a student's attendance rows.
type AttendanceCounts struct {
	Present int `db:"present"`
	Total   int `db:"total"`
}

// AdminDashboard aggregates school-wide figures for a date.
type AdminDashboard struct {
	Date            string                `json:"date"`
	TotalStudents   int                   `json:"total_students"`
	TotalTeachers   int                   `json:"total_teachers"`
	TotalLessons    int                   `json:"total_lessons"`
	PresentToday    int                   `json:"present_today"`
	AttendanceToday []AdminAttendanceItem `json:"attendance_today"`
	TeacherList     []AdminTeacherItem    `json:"teacher_list"`
}

// AdminAttendanceItem is an attendance row on the admin dashboard.
type AdminAttendanceItem struct {
	Name    string `db:"name" json:"name"`
	Contact string `db:"contact" json:"contact"`
	Status  string `db:"status" json:"status"`
	Today   string `db:"-" json:"today"`
}

// AdminTeacherItem is a teacher row on the admin dashboard.
type AdminTeacherItem struct {
	Name    string `db:"name" json:"name"`
	Subject string `db:"subject" json:"subject"`
}
