// Package calendar buckets appointments into the weekly day×hour grid shown
// to the administrator.
package calendar

import (
	"encoding/json"
	"time"

	"github.com/BruksfildServices01/barber-turnos/internal/models"
)

const (
	StartHour = 9
	EndHour   = 18
	Days      = 6 // Monday to Saturday

	dateLayout = "2006-01-02"
)

// Key identifies one cell: a local calendar date and a local hour.
type Key struct {
	Date string
	Hour int
}

type Grid struct {
	Days    []time.Time
	Hours   []int
	Buckets map[Key][]models.Appointment

	// Appointments is the snapshot the grid was built from.
	Appointments []models.Appointment
}

// Bucket returns the appointments in the cell (day, hour).
func (g Grid) Bucket(day time.Time, hour int) []models.Appointment {
	return g.Buckets[Key{Date: day.Format(dateLayout), Hour: hour}]
}

type slotJSON struct {
	Day          string               `json:"day"`
	Hour         int                  `json:"hour"`
	Appointments []models.Appointment `json:"appointments"`
}

func (g Grid) MarshalJSON() ([]byte, error) {
	days := make([]string, len(g.Days))
	for i, d := range g.Days {
		days[i] = d.Format(dateLayout)
	}

	slots := []slotJSON{}
	for _, day := range days {
		for _, h := range g.Hours {
			if apps := g.Buckets[Key{Date: day, Hour: h}]; len(apps) > 0 {
				slots = append(slots, slotJSON{Day: day, Hour: h, Appointments: apps})
			}
		}
	}

	apps := g.Appointments
	if apps == nil {
		apps = []models.Appointment{}
	}

	return json.Marshal(struct {
		Days         []string             `json:"days"`
		Hours        []int                `json:"hours"`
		Slots        []slotJSON           `json:"slots"`
		Appointments []models.Appointment `json:"appointments"`
	}{days, g.Hours, slots, apps})
}

type Aggregator struct {
	loc *time.Location
	now func() time.Time
}

func NewAggregator(loc *time.Location) *Aggregator {
	return &Aggregator{loc: loc, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// WeekStart is local midnight of the Monday of the week containing t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// WeeklyGrid builds a fresh grid for the current week. Appointments outside
// the six days or the opening hours are left out of the buckets.
func (a *Aggregator) WeeklyGrid(apps []models.Appointment) Grid {
	monday := WeekStart(a.now(), a.loc)

	g := Grid{
		Days:         make([]time.Time, Days),
		Hours:        make([]int, 0, EndHour-StartHour+1),
		Buckets:      make(map[Key][]models.Appointment),
		Appointments: apps,
	}

	inWeek := make(map[string]bool, Days)
	for i := range g.Days {
		g.Days[i] = monday.AddDate(0, 0, i)
		inWeek[g.Days[i].Format(dateLayout)] = true
	}
	for h := StartHour; h <= EndHour; h++ {
		g.Hours = append(g.Hours, h)
	}

	for _, ap := range apps {
		local := ap.Time.In(a.loc)
		date := local.Format(dateLayout)
		hour := local.Hour()

		if !inWeek[date] || hour < StartHour || hour > EndHour {
			continue
		}
		k := Key{Date: date, Hour: hour}
		g.Buckets[k] = append(g.Buckets[k], ap)
	}

	return g
}
