package metrics

import (
	"cmp"
	"slices"
	"time"

	"github.com/sadopc/timeplease/internal/model"
)

const (
	UnknownProjectName  = "Unknown Project"
	UnknownProjectColor = "#ccc"

	// MonthLayout renders month labels such as "December 2025".
	MonthLayout = "January 2006"
)

type ProjectTotal struct {
	ProjectID         string  `json:"project_id"`
	ProjectName       string  `json:"project_name"`
	ProjectColor      string  `json:"project_color"`
	ActualWorkMinutes float64 `json:"actual_work_minutes"`
	ElapsedMinutes    float64 `json:"elapsed_minutes"`
}

type DayStats struct {
	Date                   string         `json:"date"`
	Projects               []ProjectTotal `json:"projects"`
	TotalActualWorkMinutes float64        `json:"total_actual_work_minutes"`
	TotalElapsedMinutes    float64        `json:"total_elapsed_minutes"`
	Efficiency             float64        `json:"efficiency"`
}

type WeekStats struct {
	WeekNumber             int        `json:"week_number"`
	TotalActualWorkMinutes float64    `json:"total_actual_work_minutes"`
	Days                   []DayStats `json:"days"`
}

type MonthStats struct {
	MonthName              string      `json:"month_name"`
	TotalActualWorkMinutes float64     `json:"total_actual_work_minutes"`
	DaysWorked             int         `json:"days_worked"`
	Weeks                  []WeekStats `json:"weeks"`
}

// CalculateEfficiency returns actual as a percentage of elapsed, or 0 when
// nothing elapsed. The result is not capped at 100.
func CalculateEfficiency(actualMinutes, elapsedMinutes float64) float64 {
	if elapsedMinutes == 0 {
		return 0
	}
	return actualMinutes / elapsedMinutes * 100
}

// GroupByDayAndProject buckets sessions by the local date of their start time
// and sums them per project. Days are returned newest first; projects within a
// day keep the order in which they first appear.
func GroupByDayAndProject(sessions []model.Session, projects []model.Project) []DayStats {
	byID := make(map[string]model.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	type dayBucket struct {
		order  []string
		totals map[string]*ProjectTotal
	}
	days := make(map[string]*dayBucket)

	for _, s := range sessions {
		date := model.LocalDate(s.StartTime)
		bucket, ok := days[date]
		if !ok {
			bucket = &dayBucket{totals: make(map[string]*ProjectTotal)}
			days[date] = bucket
		}

		total, ok := bucket.totals[s.ProjectID]
		if !ok {
			total = &ProjectTotal{
				ProjectID:    s.ProjectID,
				ProjectName:  UnknownProjectName,
				ProjectColor: UnknownProjectColor,
			}
			if p, found := byID[s.ProjectID]; found {
				if p.Name != "" {
					total.ProjectName = p.Name
				}
				if p.Color != "" {
					total.ProjectColor = p.Color
				}
			}
			bucket.totals[s.ProjectID] = total
			bucket.order = append(bucket.order, s.ProjectID)
		}
		total.ActualWorkMinutes += s.ActualWorkMinutes
		total.ElapsedMinutes += float64(s.ElapsedSeconds) / 60
	}

	result := make([]DayStats, 0, len(days))
	for date, bucket := range days {
		day := DayStats{Date: date, Projects: make([]ProjectTotal, 0, len(bucket.order))}
		for _, id := range bucket.order {
			t := bucket.totals[id]
			day.Projects = append(day.Projects, *t)
			day.TotalActualWorkMinutes += t.ActualWorkMinutes
			day.TotalElapsedMinutes += t.ElapsedMinutes
		}
		day.Efficiency = CalculateEfficiency(day.TotalActualWorkMinutes, day.TotalElapsedMinutes)
		result = append(result, day)
	}

	slices.SortFunc(result, func(a, b DayStats) int { return cmp.Compare(b.Date, a.Date) })
	return result
}

// GroupByMonthAndWeek rolls the day stats up into calendar months and ISO weeks.
// Months, weeks and days are all ordered newest first.
func GroupByMonthAndWeek(sessions []model.Session, projects []model.Project) []MonthStats {
	var months []*MonthStats
	byName := make(map[string]*MonthStats)

	for _, day := range GroupByDayAndProject(sessions, projects) {
		date, err := time.ParseInLocation(model.DateLayout, day.Date, time.Local)
		if err != nil {
			continue
		}
		name := date.Format(MonthLayout)
		_, week := date.ISOWeek()

		month, ok := byName[name]
		if !ok {
			month = &MonthStats{MonthName: name}
			byName[name] = month
			months = append(months, month)
		}
		month.TotalActualWorkMinutes += day.TotalActualWorkMinutes
		month.DaysWorked++

		i := slices.IndexFunc(month.Weeks, func(w WeekStats) bool { return w.WeekNumber == week })
		if i < 0 {
			month.Weeks = append(month.Weeks, WeekStats{WeekNumber: week})
			i = len(month.Weeks) - 1
		}
		month.Weeks[i].TotalActualWorkMinutes += day.TotalActualWorkMinutes
		month.Weeks[i].Days = append(month.Weeks[i].Days, day)
	}

	result := make([]MonthStats, 0, len(months))
	for _, m := range months {
		slices.SortStableFunc(m.Weeks, func(a, b WeekStats) int { return cmp.Compare(b.WeekNumber, a.WeekNumber) })
		for _, w := range m.Weeks {
			slices.SortFunc(w.Days, func(a, b DayStats) int { return cmp.Compare(b.Date, a.Date) })
		}
		result = append(result, *m)
	}
	slices.SortStableFunc(result, func(a, b MonthStats) int {
		return monthStart(b.MonthName).Compare(monthStart(a.MonthName))
	})
	return result
}

// Today returns the stats for the local date of now, if any session started that day.
func Today(days []DayStats, now time.Time) (DayStats, bool) {
	date := model.LocalDate(now)
	for _, d := range days {
		if d.Date == date {
			return d, true
		}
	}
	return DayStats{}, false
}

func monthStart(name string) time.Time {
	t, err := time.ParseInLocation(MonthLayout, name, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
