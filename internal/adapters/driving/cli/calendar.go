package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/calendar/v3"

	"github.com/elemental-reasoning/gdevutils/gcal"
)

var calendarCmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Work with Google Calendar",
	Long: `List calendars, inspect upcoming events, and create or delete events.

Examples:
  gdevutils calendar list
  gdevutils calendar events --count 5
  gdevutils calendar events --from 2026-09-01 --to 2026-09-07
  gdevutils calendar create --summary "Standup" --start 2026-09-01T09:00 --end 2026-09-01T09:15
  gdevutils calendar delete <event-id>`,
}

var calendarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available calendars",
	RunE:  runCalendarList,
}

var calendarEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show upcoming or in-range events",
	RunE:  runCalendarEvents,
}

var calendarCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an event",
	RunE:  runCalendarCreate,
}

var calendarDeleteCmd = &cobra.Command{
	Use:   "delete [event-id]",
	Short: "Delete an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendarDelete,
}

// Flags for the calendar commands.
var (
	calEventsCount int64
	calEventsFrom  string
	calEventsTo    string

	calCreateSummary     string
	calCreateStart       string
	calCreateEnd         string
	calCreateAllDay      bool
	calCreateDescription string
	calCreateLocation    string
)

func init() {
	calendarCmd.PersistentFlags().StringVar(
		&flagCalendarID, "calendar", "", "Calendar name (defaults to the primary calendar)")

	calendarEventsCmd.Flags().Int64Var(&calEventsCount, "count", 10, "Number of upcoming events to show")
	calendarEventsCmd.Flags().StringVar(&calEventsFrom, "from", "", "Range start (YYYY-MM-DD)")
	calendarEventsCmd.Flags().StringVar(&calEventsTo, "to", "", "Range end (YYYY-MM-DD, inclusive)")

	calendarCreateCmd.Flags().StringVar(&calCreateSummary, "summary", "", "Event title (required)")
	calendarCreateCmd.Flags().StringVar(&calCreateStart, "start", "", "Start time (YYYY-MM-DDTHH:MM or YYYY-MM-DD with --all-day)")
	calendarCreateCmd.Flags().StringVar(&calCreateEnd, "end", "", "End time (defaults to one hour after start)")
	calendarCreateCmd.Flags().BoolVar(&calCreateAllDay, "all-day", false, "Create an all-day event")
	calendarCreateCmd.Flags().StringVar(&calCreateDescription, "description", "", "Event description")
	calendarCreateCmd.Flags().StringVar(&calCreateLocation, "location", "", "Event location")
	_ = calendarCreateCmd.MarkFlagRequired("summary")
	_ = calendarCreateCmd.MarkFlagRequired("start")

	calendarCmd.AddCommand(calendarListCmd)
	calendarCmd.AddCommand(calendarEventsCmd)
	calendarCmd.AddCommand(calendarCreateCmd)
	calendarCmd.AddCommand(calendarDeleteCmd)
	rootCmd.AddCommand(calendarCmd)
}

func runCalendarList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := calendarClient(ctx)
	if err != nil {
		return err
	}
	entries, err := client.Calendars(ctx)
	if err != nil {
		return fmt.Errorf("listing calendars: %w", err)
	}

	cmd.Println(titleStyle.Render("Calendars"))
	for _, entry := range entries {
		name := entry.Summary
		if entry.Primary {
			name += " " + mutedStyle.Render("(primary)")
		}
		cmd.Printf("  %s\n", name)
	}
	return nil
}

func runCalendarEvents(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := calendarClient(ctx)
	if err != nil {
		return err
	}

	var events []*calendar.Event
	if calEventsFrom != "" || calEventsTo != "" {
		start, end, err := parseDateRange(calEventsFrom, calEventsTo)
		if err != nil {
			return err
		}
		events, err = client.EventsInDateRange(ctx, start, end)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}
	} else {
		events, err = client.NextEvents(ctx, calEventsCount)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}
	}

	if len(events) == 0 {
		cmd.Println("No events found.")
		return nil
	}

	for _, event := range events {
		printEvent(cmd, event)
	}
	return nil
}

func printEvent(cmd *cobra.Command, event *calendar.Event) {
	start, end := gcal.EventTimes(event)
	cmd.Printf("%s\n", headerStyle.Render(event.Summary))
	cmd.Printf("  %s to %s\n", start, end)
	if event.Location != "" {
		cmd.Printf("  %s\n", mutedStyle.Render(event.Location))
	}
	cmd.Printf("  %s\n", mutedStyle.Render("id: "+event.Id))
}

func runCalendarCreate(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	event := &calendar.Event{
		Summary:     calCreateSummary,
		Description: calCreateDescription,
		Location:    calCreateLocation,
	}

	if calCreateAllDay {
		start, err := time.Parse("2006-01-02", calCreateStart)
		if err != nil {
			return fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", calCreateStart)
		}
		end := start.AddDate(0, 0, 1)
		if calCreateEnd != "" {
			last, err := time.Parse("2006-01-02", calCreateEnd)
			if err != nil {
				return fmt.Errorf("invalid --end %q: expected YYYY-MM-DD", calCreateEnd)
			}
			end = last.AddDate(0, 0, 1)
		}
		event.Start = &calendar.EventDateTime{Date: start.Format("2006-01-02")}
		event.End = &calendar.EventDateTime{Date: end.Format("2006-01-02")}
	} else {
		start, err := parseLocalTime(calCreateStart)
		if err != nil {
			return fmt.Errorf("invalid --start %q: %w", calCreateStart, err)
		}
		end := start.Add(time.Hour)
		if calCreateEnd != "" {
			end, err = parseLocalTime(calCreateEnd)
			if err != nil {
				return fmt.Errorf("invalid --end %q: %w", calCreateEnd, err)
			}
		}
		event.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)}
		event.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}
	}

	client, err := calendarClient(ctx)
	if err != nil {
		return err
	}
	created, err := client.CreateEvent(ctx, event)
	if err != nil {
		return fmt.Errorf("creating event: %w", err)
	}

	cmd.Println(successStyle.Render("Created event " + created.Id))
	return nil
}

func runCalendarDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := calendarClient(ctx)
	if err != nil {
		return err
	}
	if err := client.DeleteEvent(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	cmd.Printf("Deleted event %s\n", args[0])
	return nil
}

// parseLocalTime accepts a local wall-clock time with or without seconds.
func parseLocalTime(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected YYYY-MM-DDTHH:MM")
}

// parseDateRange turns --from/--to date flags into a concrete range.
// A missing bound defaults to today.
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	today := time.Now()
	start, end := today, today

	if from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q: expected YYYY-MM-DD", from)
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q: expected YYYY-MM-DD", to)
		}
		end = t
	} else {
		end = start
	}
	return start, end, nil
}
