package calendar

import (
	"fmt"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
)

// SessionIDProperty is the private extended property linking an event to its session.
const SessionIDProperty = "timeplease_session_id"

// SessionToEvent renders a session as a calendar event spanning its start and end.
func SessionToEvent(s model.Session, p *model.Project) *gcal.Event {
	name := metrics.UnknownProjectName
	if p != nil && p.Name != "" {
		name = p.Name
	}

	summary := name
	if s.Label != "" {
		summary = fmt.Sprintf("%s: %s", name, s.Label)
	}

	elapsed := time.Duration(s.ElapsedSeconds) * time.Second
	elapsedMinutes := float64(s.ElapsedSeconds) / 60

	var desc strings.Builder
	fmt.Fprintf(&desc, "Project: %s\n", name)
	fmt.Fprintf(&desc, "Mode: %s\n", s.Type.Label())
	fmt.Fprintf(&desc, "Elapsed: %s\n", elapsed)
	fmt.Fprintf(&desc, "Actual work: %.0fm\n", s.ActualWorkMinutes)
	fmt.Fprintf(&desc, "Efficiency: %.0f%%\n", metrics.CalculateEfficiency(s.ActualWorkMinutes, elapsedMinutes))
	if p != nil && p.Notes != "" {
		fmt.Fprintf(&desc, "\nNotes:\n%s\n", p.Notes)
	}

	return &gcal.Event{
		Summary:     summary,
		Description: desc.String(),
		Start:       &gcal.EventDateTime{DateTime: s.StartTime.UTC().Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: s.EndTime.UTC().Format(time.RFC3339)},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{SessionIDProperty: s.ID},
		},
	}
}
