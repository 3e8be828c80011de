package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/nanaacademy/academy-server/internal/repository"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute

	recentStudents      = 10
	recentTeachers      = 10
	recentAnnouncements = 5
)

// Stats holds the aggregate record counts shown on the admin dashboard.
// Counts cover every record in a collection, active or not.
type Stats struct {
	Students      int `json:"students"`
	Teachers      int `json:"teachers"`
	Classes       int `json:"classes"`
	Announcements int `json:"announcements"`
}

// Dashboard is the full admin dashboard payload. Every section can be
// missing independently: a failed stats join or a failed list leaves its
// section nil and is reported through the per-section error map so the
// rest still renders.
type Dashboard struct {
	Stats         *StatsView
	Students      []StudentRow
	Teachers      []TeacherRow
	Announcements []AnnouncementRow
	SectionErrors map[string]string
}

// DashboardService assembles the admin dashboard. Redis is optional; when
// present, stats are cached briefly to keep repeated dashboard loads from
// re-counting four tables.
type DashboardService struct {
	Students      StudentStore
	Teachers      TeacherStore
	Classes       ClassStore
	Announcements AnnouncementStore
	Redis         *redis.Client
}

func NewDashboardService(students StudentStore, teachers TeacherStore, classes ClassStore, anns AnnouncementStore, rdb *redis.Client) *DashboardService {
	return &DashboardService{Students: students, Teachers: teachers, Classes: classes, Announcements: anns, Redis: rdb}
}

// Load builds the dashboard for the given actor. Only admins may load it.
// The four counts run concurrently and fail as a unit, but a failed stats
// block never takes down the recents: the dashboard stays partially
// rendered with no counts shown.
func (d *DashboardService) Load(ctx context.Context, actor Actor) (Dashboard, error) {
	if actor.IsZero() {
		return Dashboard{}, ErrNoActor
	}
	if !actor.IsAdmin() {
		return Dashboard{}, ErrPermissionDenied
	}

	out := Dashboard{SectionErrors: map[string]string{}}

	stats, err := d.stats(ctx)
	if err != nil {
		log.Printf("dashboard: loading stats failed: %v", err)
		out.SectionErrors["stats"] = "Error loading stats"
	} else {
		v := BuildStatsView(stats)
		out.Stats = &v
	}

	students, err := d.Students.List(ctx, repository.ListOptions{
		OrderBy: "date_enrolled", Desc: true, Limit: recentStudents, ActiveOnly: true,
	})
	if err != nil {
		log.Printf("dashboard: listing recent students failed: %v", err)
		out.SectionErrors["students"] = "Error loading students"
	} else {
		out.Students = BuildStudentRows(students)
	}

	teachers, err := d.Teachers.List(ctx, repository.ListOptions{
		OrderBy: "date_joined", Desc: true, Limit: recentTeachers, ActiveOnly: true,
	})
	if err != nil {
		log.Printf("dashboard: listing recent teachers failed: %v", err)
		out.SectionErrors["teachers"] = "Error loading teachers"
	} else {
		out.Teachers = BuildTeacherRows(teachers)
	}

	anns, err := d.Announcements.List(ctx, repository.ListOptions{
		OrderBy: "date_posted", Desc: true, Limit: recentAnnouncements, ActiveOnly: true,
	})
	if err != nil {
		log.Printf("dashboard: listing recent announcements failed: %v", err)
		out.SectionErrors["announcements"] = "Error loading announcements"
	} else {
		out.Announcements = BuildAnnouncementRows(anns)
	}

	return out, nil
}

// stats returns the aggregate counts, consulting the short-lived cache
// first. The four counts run concurrently; any failure fails the whole
// stats block so the dashboard never shows a partial count row.
func (d *DashboardService) stats(ctx context.Context) (Stats, error) {
	if s, ok := d.cachedStats(ctx); ok {
		return s, nil
	}

	var s Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := d.Students.Count(gctx)
		s.Students = n
		return err
	})
	g.Go(func() error {
		n, err := d.Teachers.Count(gctx)
		s.Teachers = n
		return err
	})
	g.Go(func() error {
		n, err := d.Classes.Count(gctx)
		s.Classes = n
		return err
	})
	g.Go(func() error {
		n, err := d.Announcements.Count(gctx)
		s.Announcements = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	d.storeStats(ctx, s)
	return s, nil
}

func (d *DashboardService) cachedStats(ctx context.Context) (Stats, bool) {
	if d.Redis == nil {
		return Stats{}, false
	}
	raw, err := d.Redis.Get(ctx, statsCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("dashboard: stats cache read failed: %v", err)
		}
		return Stats{}, false
	}
	var s Stats
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Stats{}, false
	}
	return s, true
}

func (d *DashboardService) storeStats(ctx context.Context, s Stats) {
	if d.Redis == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := d.Redis.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		log.Printf("dashboard: stats cache write failed: %v", err)
	}
}

// InvalidateStats drops the cached counts. Called after directory writes
// so the next dashboard load reflects them.
func (d *DashboardService) InvalidateStats(ctx context.Context) {
	if d.Redis == nil {
		return
	}
	if err := d.Redis.Del(ctx, statsCacheKey).Err(); err != nil {
		log.Printf("dashboard: stats cache invalidation failed: %v", err)
	}
}
