package model

import "time"

// Directory record id prefixes. Generated ids look like "STU482910".
const (
	StudentIDPrefix      = "STU"
	TeacherIDPrefix      = "TCH"
	ClassIDPrefix        = "CLS"
	AnnouncementIDPrefix = "ANN"
)

// Student mirrors the `students` table. The student record is independent
// of any login: HasLoginAccount records whether a paired identity and role
// record were actually created, which can be false even when a login was
// requested (see the provisioning service). IsActive is nullable in
// storage; legacy rows without the column value read as active.
type Student struct {
	StudentID       string
	FirstName       string
	LastName        string
	FullName        string
	Gender          string
	DateOfBirth     string
	CurrentClass    string
	ParentName      string
	ParentPhone     string
	ParentEmail     string
	StudentEmail    string
	HomeAddress     string
	PhotoURL        string
	DateEnrolled    time.Time
	IsActive        bool
	HasLoginAccount bool
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Teacher mirrors the `teachers` table. Subjects and AssignedClasses are
// stored as JSON arrays in a TEXT column.
type Teacher struct {
	TeacherID       string
	Name            string
	Subjects        []string
	Phone           string
	Email           string
	AssignedClasses []string
	DateJoined      time.Time
	IsActive        bool
	HasLoginAccount bool
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// Class mirrors the `classes` table. TeacherID and StudentIDs are weak
// references into the teachers and students collections; no foreign key
// constraints are enforced.
type Class struct {
	ClassID      string
	ClassName    string
	Level        string
	TeacherID    string
	AcademicYear string
	StudentIDs   []string
	IsActive     bool
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Announcement mirrors the `announcements` table. TargetRoles restricts
// which dashboards display the announcement; the default is ["all"].
type Announcement struct {
	AnnouncementID string
	Title          string
	Content        string
	AuthorID       string
	AuthorName     string
	TargetRoles    []string
	IsActive       bool
	DatePosted     time.Time
	ExpiryDate     *time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
