package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/projects"
	"github.com/sadopc/timeplease/internal/sessions"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportMonthly
)

const reportDays = 7

type reportsModel struct {
	projects *projects.Store
	sessions *sessions.Store
	width    int
	height   int

	mode   reportMode
	days   []metrics.DayStats
	months []metrics.MonthStats
	offset int // 7-day blocks or months back from the current one
	now    time.Time

	chart barchart.Model
}

func newReportsModel(p *projects.Store, s *sessions.Store) reportsModel {
	return reportsModel{
		projects: p,
		sessions: s,
		chart:    barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	days   []metrics.DayStats
	months []metrics.MonthStats
	now    time.Time
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		all := r.sessions.Sessions()
		list := r.projects.All()
		return reportsDataMsg{
			days:   metrics.GroupByDayAndProject(all, list),
			months: metrics.GroupByMonthAndWeek(all, list),
			now:    time.Now(),
		}
	}
}

// dateRange returns the local dates covered by the daily view, oldest first.
func (r reportsModel) dateRange() []time.Time {
	now := r.now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.Local()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, -reportDays*r.offset)

	dates := make([]time.Time, 0, reportDays)
	for i := reportDays - 1; i >= 0; i-- {
		dates = append(dates, end.AddDate(0, 0, -i))
	}
	return dates
}

// month returns the month shown by the monthly view, if there is one.
func (r reportsModel) month() (metrics.MonthStats, bool) {
	if r.offset < 0 || r.offset >= len(r.months) {
		return metrics.MonthStats{}, false
	}
	return r.months[r.offset], true
}

func (r reportsModel) dayByDate() map[string]metrics.DayStats {
	m := make(map[string]metrics.DayStats, len(r.days))
	for _, d := range r.days {
		m[d.Date] = d
	}
	return m
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.days = msg.days
		r.months = msg.months
		r.now = msg.now
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if r.mode == reportMonthly && r.offset >= len(r.months)-1 {
				return r, nil
			}
			r.offset++
			r.buildChart()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			r.buildChart()
		case key.Matches(msg, keys.Toggle):
			if r.mode == reportDaily {
				r.mode = reportMonthly
			} else {
				r.mode = reportDaily
			}
			r.offset = 0
			r.buildChart()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	if r.mode == reportMonthly {
		bars = r.monthBars()
	} else {
		bars = r.dayBars()
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) dayBars() []barchart.BarData {
	byDate := r.dayByDate()
	var bars []barchart.BarData
	for _, d := range r.dateRange() {
		day := byDate[d.Format(model.DateLayout)]

		var values []barchart.BarValue
		for _, p := range day.Projects {
			values = append(values, barchart.BarValue{
				Name:  p.ProjectName,
				Value: p.ActualWorkMinutes / 60,
				Style: lipgloss.NewStyle().Foreground(lipgloss.Color(p.ProjectColor)),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  d.Format("Mon 02"),
			Values: values,
		})
	}
	return bars
}

func (r reportsModel) monthBars() []barchart.BarData {
	m, ok := r.month()
	if !ok {
		return nil
	}
	// Weeks are stored newest first; chart them left to right.
	var bars []barchart.BarData
	for i := len(m.Weeks) - 1; i >= 0; i-- {
		w := m.Weeks[i]
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("W%02d", w.WeekNumber),
			Values: []barchart.BarValue{{
				Name:  fmt.Sprintf("Week %d", w.WeekNumber),
				Value: w.TotalActualWorkMinutes / 60,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}},
		})
	}
	return bars
}

func (r reportsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	monthlyTab := inactiveTabStyle.Render("Monthly")
	if r.mode == reportDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		monthlyTab = activeTabStyle.Render("Monthly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, monthlyTab)

	var rangeLabel, tableView, legend string
	if r.mode == reportMonthly {
		if m, ok := r.month(); ok {
			rangeLabel = fmt.Sprintf("%s  %s in %d days", m.MonthName, formatMinutes(m.TotalActualWorkMinutes), m.DaysWorked)
		} else {
			rangeLabel = "No months recorded"
		}
		tableView = r.renderMonthTable(w)
	} else {
		dates := r.dateRange()
		rangeLabel = fmt.Sprintf("%s - %s", dates[0].Format("Jan 02"), dates[len(dates)-1].Format("Jan 02, 2006"))
		tableView = r.renderDayTable(w)
		legend = r.renderLegend()
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", mutedStyle.Render(rangeLabel),
	)

	nav := mutedStyle.Render("  ←/→: navigate  t: daily/monthly  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderDayTable(w int) string {
	byDate := r.dayByDate()
	dates := r.dateRange()

	var rows []string
	for i := len(dates) - 1; i >= 0; i-- {
		day, ok := byDate[dates[i].Format(model.DateLayout)]
		if !ok {
			continue
		}
		for _, p := range day.Projects {
			rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %10s %10s %6s",
				day.Date, projectDot(p.ProjectColor), p.ProjectName,
				formatMinutes(p.ActualWorkMinutes), formatMinutes(p.ElapsedMinutes),
				formatEfficiency(metrics.CalculateEfficiency(p.ActualWorkMinutes, p.ElapsedMinutes)),
			))
		}
	}
	if len(rows) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	headerRow := mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %10s %10s %6s", "Date", "Project", "Worked", "Elapsed", "Eff."))
	rule := mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 64)))
	return strings.Join(append([]string{headerRow, rule}, rows...), "\n")
}

func (r reportsModel) renderMonthTable(w int) string {
	m, ok := r.month()
	if !ok {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-8s %-12s %10s %6s", "Week", "Day", "Worked", "Eff.")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 42))))
	for _, week := range m.Weeks {
		rows = append(rows, highlightStyle.Render(fmt.Sprintf("  %-8s %-12s %10s",
			fmt.Sprintf("W%02d", week.WeekNumber), "", formatMinutes(week.TotalActualWorkMinutes))))
		for _, d := range week.Days {
			rows = append(rows, fmt.Sprintf("  %-8s %-12s %10s %6s",
				"", d.Date, formatMinutes(d.TotalActualWorkMinutes), formatEfficiency(d.Efficiency)))
		}
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	byDate := r.dayByDate()
	seen := make(map[string]bool)
	var items []string
	for _, d := range r.dateRange() {
		for _, p := range byDate[d.Format(model.DateLayout)].Projects {
			if seen[p.ProjectID] {
				continue
			}
			seen[p.ProjectID] = true
			items = append(items, fmt.Sprintf("%s %s", projectDot(p.ProjectColor), p.ProjectName))
		}
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
