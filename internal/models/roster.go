package models

// Group is a class of students.
type Group struct {
	ID   int64  `db:"group_id" json:"group_id"`
	Name string `db:"group_name" json:"group_name"`
}

// Student is a learner belonging to a group.
type Student struct {
	ID           int64   `db:"student_id" json:"student_id"`
	FirstName    string  `db:"first_name" json:"first_name"`
	LastName     string  `db:"last_name" json:"last_name"`
	Email        string  `db:"email" json:"email"`
	GroupID      int64   `db:"group_id" json:"group_id"`
	GroupName    *string `db:"group_name" json:"group_name,omitempty"`
	PasswordHash string  `db:"password" json:"-"`
}

// FullName joins first and last name.
func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// StudentProfile is the profile view returned to students.
type StudentProfile struct {
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     string  `db:"email" json:"email"`
	GroupName *string `db:"group_name" json:"group_name"`
}

// Teacher teaches a subject.
type Teacher struct {
	ID          int64   `db:"teacher_id" json:"teacher_id"`
	FirstName   string  `db:"first_name" json:"first_name"`
	LastName    string  `db:"last_name" json:"last_name"`
	Email       string  `db:"email" json:"email"`
	Phone       string  `db:"phone" json:"phone"`
	SubjectID   *int64  `db:"subject_id" json:"subject_id,omitempty"`
	SubjectName *string `db:"subject_name" json:"subject_name,omitempty"`
}

// Subject is a taught discipline.
type Subject struct {
	ID   int64  `db:"subject_id" json:"subject_id"`
	Name string `db:"name" json:"name"`
}

// Location is a named geofence centre.
type Location struct {
	ID        int64   `db:"location_id" json:"location_id"`
	Name      string  `db:"name" json:"name"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

// CreateGroupRequest is the admin payload for a new group.
type CreateGroupRequest struct {
	Name string `json:"group_name" validate:"required,max=100"`
}

// CreateStudentRequest is the admin payload for a new student.
type CreateStudentRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	GroupID   int64  `json:"group_id" validate:"required,gt=0"`
	Password  string `json:"password" validate:"required,min=8"`
}

// CreateTeacherRequest is the admin payload for a new teacher.
type CreateTeacherRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	SubjectID *int64 `json:"subject_id" validate:"omitempty,gt=0"`
}

// CreateLocationRequest is the admin payload for a new location.
type CreateLocationRequest struct {
	Name      string   `json:"name" validate:"required,max=100"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}
