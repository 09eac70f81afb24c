package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kev1N916/trial-bot/internal/models"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// CalendarClient publishes configured sprints to a shared Google Calendar.
type CalendarClient struct {
	service    *calendar.Service
	calendarID string
}

func NewCalendarClient(ctx context.Context) (*CalendarClient, error) {
	calendarID := viper.GetString("google.calendar.calendar_id")
	if calendarID == "" {
		return nil, fmt.Errorf("google calendar ID is not configured")
	}

	settings := viper.Get("google.service_account")

	jsonBytes, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal service account settings to JSON: %w", err)
	}

	// create credentials from JSON data
	config, err := google.JWTConfigFromJSON(jsonBytes, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials from JSON: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	return &CalendarClient{service: srv, calendarID: calendarID}, nil
}

func sprintEvent(sprint models.SprintConfig, day time.Time) *calendar.Event {
	return &calendar.Event{
		Summary:     fmt.Sprintf("Sprint %s configured", sprint.DisplayName()),
		Description: fmt.Sprintf("Jira sprint %s on board %s", sprint.SprintID, sprint.BoardID),
		Start: &calendar.EventDateTime{
			Date: day.Format("2006-01-02"),
		},
		End: &calendar.EventDateTime{
			Date: day.AddDate(0, 0, 1).Format("2006-01-02"), // all-day event ends the next day
		},
	}
}

// UpsertSprintEvent creates the sprint's event, or updates it when the
// sprint already has one. It returns the event ID.
func (c *CalendarClient) UpsertSprintEvent(ctx context.Context, sprint models.SprintConfig) (string, error) {
	event := sprintEvent(sprint, time.Now())

	if sprint.CalendarEventID != "" {
		updated, err := c.service.Events.Update(c.calendarID, sprint.CalendarEventID, event).Context(ctx).Do()
		if err == nil {
			return updated.Id, nil
		}
		// It's possible the event was deleted from the calendar, recreate it in that case
		if gerr, ok := err.(*googleapi.Error); !ok || (gerr.Code != 404 && gerr.Code != 410) {
			return "", fmt.Errorf("unable to update event in Google Calendar: %w", err)
		}
		zap.L().Info("Sprint event not found in Google Calendar, recreating", zap.String("eventID", sprint.CalendarEventID))
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create event in Google Calendar: %w", err)
	}

	return created.Id, nil
}
