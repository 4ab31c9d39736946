package usecase

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var mailTemplates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"join":  strings.Join,
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"date":  func(t time.Time) string { return t.Format("02 January 2006") },
	"clock": func(t time.Time) string { return t.Format("03:04 PM") },
}).Parse(`
{{define "booking_confirmed"}}<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<p>Your booking for <strong>"{{.MovieTitle}}"</strong> is confirmed.</p>
<div style="border: 1px solid #ddd; padding: 15px; border-radius: 8px;">
<p><strong>Movie:</strong> {{.MovieTitle}}<br>
{{if not .ShowTime.IsZero}}<strong>Date:</strong> {{date .ShowTime}}<br>
<strong>Time:</strong> {{clock .ShowTime}}<br>{{end}}
<strong>Seats:</strong> {{join .Seats ", "}}<br>
<strong>Total:</strong> {{money .Amount}}</p>
</div>
<p>Enjoy the show!</p>
</div>{{end}}

{{define "show_reminder"}}<div style="font-family: Arial, sans-serif; padding: 20px;">
<p>This is a quick reminder that your movie</p>
<h3>"{{.MovieTitle}}"</h3>
<p>is scheduled for <strong>{{date .ShowTime}}</strong> at <strong>{{clock .ShowTime}}</strong>.</p>
<p>Seats: {{join .Seats ", "}}</p>
<p>Enjoy the show!</p>
</div>{{end}}

{{define "show_added"}}<div style="font-family: Arial, sans-serif; padding: 20px;">
<p>We've just added new shows to our library:</p>
<h3>"{{.MovieTitle}}"</h3>
<p>{{.ShowCount}} screening(s), starting {{date .FirstShow}} at {{clock .FirstShow}}.</p>
</div>{{end}}
`))

type ticketMail struct {
	MovieTitle string
	ShowTime   time.Time
	Seats      []string
	Amount     float64
}

// inZone moves a show time into the cinema's location for display.
func inZone(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() || loc == nil {
		return t
	}
	return t.In(loc)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

func bookingConfirmedMail(to string, data ticketMail, loc *time.Location) (NotificationRequest, error) {
	data.ShowTime = inZone(data.ShowTime, loc)
	body, err := render("booking_confirmed", data)
	if err != nil {
		return NotificationRequest{}, err
	}
	return NotificationRequest{
		Kind:    NotificationBookingConfirmed,
		To:      to,
		Subject: fmt.Sprintf("Payment Confirmation: %q booked!", data.MovieTitle),
		Body:    body,
	}, nil
}

func showReminderMail(to string, data ticketMail, loc *time.Location) (NotificationRequest, error) {
	data.ShowTime = inZone(data.ShowTime, loc)
	body, err := render("show_reminder", data)
	if err != nil {
		return NotificationRequest{}, err
	}
	return NotificationRequest{
		Kind:    NotificationShowReminder,
		To:      to,
		Subject: fmt.Sprintf("Reminder: Your movie %q starts soon!", data.MovieTitle),
		Body:    body,
	}, nil
}

// RenderShowAddedMail renders the announcement for a show.added event.
func RenderShowAddedMail(evt ShowAddedEvent, loc *time.Location) (subject, body string, err error) {
	evt.FirstShow = inZone(evt.FirstShow, loc)
	body, err = render("show_added", evt)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("New Show Added: %s", evt.MovieTitle), body, nil
}
