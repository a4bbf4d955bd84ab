// Package seed fills a freshly migrated store with calendar data, either
// generated from a random seed or loaded from a Parquet snapshot.
package seed

import (
	"fmt"
	"math/rand"
	"time"
)

// DatetimeLayout is how event and task times are stored.
const DatetimeLayout = "2006-01-02 15:04:05"

type User struct {
	ID       int64  `parquet:"id" json:"id"`
	Username string `parquet:"username" json:"username"`
	Password string `parquet:"password" json:"password"`
}

type Event struct {
	ID       int64  `parquet:"id" json:"id"`
	Title    string `parquet:"title" json:"title"`
	Datetime string `parquet:"datetime" json:"datetime"`
	UserID   int64  `parquet:"user_id" json:"userId"`
}

type Task struct {
	ID          int64  `parquet:"id" json:"id"`
	Title       string `parquet:"title" json:"title"`
	Datetime    string `parquet:"datetime" json:"datetime"`
	IsCompleted bool   `parquet:"is_completed" json:"isCompleted"`
	UserID      int64  `parquet:"user_id" json:"userId"`
}

type Dataset struct {
	Users  []User
	Events []Event
	Tasks  []Task
}

type Counts struct {
	Users  int `json:"users"`
	Events int `json:"events"`
	Tasks  int `json:"tasks"`
}

func (d Dataset) Counts() Counts {
	return Counts{Users: len(d.Users), Events: len(d.Events), Tasks: len(d.Tasks)}
}

var (
	eventTitles = []string{
		"Team Meeting", "Project Deadline", "Lunch with Client", "Conference Call",
		"Birthday Party", "Dentist Appointment", "Quarterly Review", "Yoga Class",
		"Board Meeting", "Product Demo", "Flight to Berlin", "Sprint Planning",
	}
	taskTitles = []string{
		"Write report", "Review pull request", "Book venue", "Send invoices",
		"Prepare slides", "Call supplier", "Update roadmap", "Renew passport",
		"Order groceries", "Plan offsite",
	}
)

// Datetimes fall in [DatetimeStart, DatetimeEnd). Both bounds are fixed so a
// seed always yields the same dataset.
var (
	DatetimeStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	DatetimeEnd   = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
)

type Generator struct {
	rnd   *rand.Rand
	start time.Time
	end   time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd:   rand.New(rand.NewSource(seed)),
		start: DatetimeStart,
		end:   DatetimeEnd,
	}
}

// Generate builds a dataset with ids counting from 1 in insertion order.
// Every event and task belongs to one of the generated users.
func (g *Generator) Generate(users, events, tasks int) Dataset {
	ds := Dataset{
		Users:  make([]User, 0, users),
		Events: make([]Event, 0, events),
		Tasks:  make([]Task, 0, tasks),
	}
	if users <= 0 {
		return ds
	}
	for i := 1; i <= users; i++ {
		ds.Users = append(ds.Users, User{
			ID:       int64(i),
			Username: fmt.Sprintf("user_%d", g.rnd.Intn(1000)+1),
			Password: fmt.Sprintf("password_%d", g.rnd.Intn(100)+1),
		})
	}
	for i := 1; i <= events; i++ {
		ds.Events = append(ds.Events, Event{
			ID:       int64(i),
			Title:    pickOne(g.rnd, eventTitles),
			Datetime: g.randomDatetime(),
			UserID:   int64(g.rnd.Intn(users) + 1),
		})
	}
	for i := 1; i <= tasks; i++ {
		ds.Tasks = append(ds.Tasks, Task{
			ID:          int64(i),
			Title:       pickOne(g.rnd, taskTitles),
			Datetime:    g.randomDatetime(),
			IsCompleted: g.rnd.Intn(2) == 1,
			UserID:      int64(g.rnd.Intn(users) + 1),
		})
	}
	return ds
}

func (g *Generator) randomDatetime() string {
	span := g.end.Sub(g.start)
	if span <= 0 {
		return g.start.Format(DatetimeLayout)
	}
	offset := time.Duration(g.rnd.Int63n(int64(span)))
	return g.start.Add(offset).Truncate(time.Second).Format(DatetimeLayout)
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
