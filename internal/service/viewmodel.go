package service

import (
	"strings"
	"time"

	"github.com/nanaacademy/academy-server/internal/model"
)

// View models are pure functions of their input records: the frontend
// renders them verbatim, so every display fallback ("Not assigned",
// "N/A") lives here rather than in templates.

const (
	excerptLen = 100

	placeholderNoStudents      = "No students found"
	placeholderNoTeachers      = "No teachers found"
	placeholderNoAnnouncements = "No announcements found"
)

// StatsView is the rendered counts block.
type StatsView struct {
	Students      int `json:"students"`
	Teachers      int `json:"teachers"`
	Classes       int `json:"classes"`
	Announcements int `json:"announcements"`
}

func BuildStatsView(s Stats) StatsView {
	return StatsView{
		Students:      s.Students,
		Teachers:      s.Teachers,
		Classes:       s.Classes,
		Announcements: s.Announcements,
	}
}

// StudentRow is one line of the recent-students table.
type StudentRow struct {
	StudentID    string `json:"studentId"`
	Name         string `json:"name"`
	Class        string `json:"class"`
	ParentPhone  string `json:"parentPhone"`
	DateEnrolled string `json:"dateEnrolled"`
	Placeholder  string `json:"placeholder,omitempty"`
}

func BuildStudentRows(students []model.Student) []StudentRow {
	if len(students) == 0 {
		return []StudentRow{{Placeholder: placeholderNoStudents}}
	}
	rows := make([]StudentRow, 0, len(students))
	for _, s := range students {
		name := s.FullName
		if name == "" {
			name = strings.TrimSpace(s.FirstName + " " + s.LastName)
		}
		rows = append(rows, StudentRow{
			StudentID:    s.StudentID,
			Name:         name,
			Class:        fallback(s.CurrentClass, "Not assigned"),
			ParentPhone:  fallback(s.ParentPhone, "N/A"),
			DateEnrolled: displayDate(s.DateEnrolled),
		})
	}
	return rows
}

// TeacherRow is one line of the recent-teachers table.
type TeacherRow struct {
	TeacherID   string `json:"teacherId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Subjects    string `json:"subjects"`
	DateJoined  string `json:"dateJoined"`
	Placeholder string `json:"placeholder,omitempty"`
}

func BuildTeacherRows(teachers []model.Teacher) []TeacherRow {
	if len(teachers) == 0 {
		return []TeacherRow{{Placeholder: placeholderNoTeachers}}
	}
	rows := make([]TeacherRow, 0, len(teachers))
	for _, t := range teachers {
		subjects := "Not assigned"
		if len(t.Subjects) > 0 {
			subjects = strings.Join(t.Subjects, ", ")
		}
		rows = append(rows, TeacherRow{
			TeacherID:  t.TeacherID,
			Name:       t.Name,
			Email:      fallback(t.Email, "No email"),
			Subjects:   subjects,
			DateJoined: displayDate(t.DateJoined),
		})
	}
	return rows
}

// AnnouncementRow is one entry of the announcements panel. Content is
// truncated to a short excerpt.
type AnnouncementRow struct {
	AnnouncementID string `json:"announcementId"`
	Title          string `json:"title"`
	Excerpt        string `json:"excerpt"`
	AuthorName     string `json:"authorName"`
	DatePosted     string `json:"datePosted"`
	Placeholder    string `json:"placeholder,omitempty"`
}

func BuildAnnouncementRows(anns []model.Announcement) []AnnouncementRow {
	if len(anns) == 0 {
		return []AnnouncementRow{{Placeholder: placeholderNoAnnouncements}}
	}
	rows := make([]AnnouncementRow, 0, len(anns))
	for _, a := range anns {
		rows = append(rows, AnnouncementRow{
			AnnouncementID: a.AnnouncementID,
			Title:          a.Title,
			Excerpt:        excerpt(a.Content, excerptLen),
			AuthorName:     fallback(a.AuthorName, "Admin"),
			DatePosted:     displayDate(a.DatePosted),
		})
	}
	return rows
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func displayDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006")
}
