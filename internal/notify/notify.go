// Package notify delivers desktop notifications through notify-send. It is
// an external collaborator of the core: failures here are swallowed and
// never reach a mutation.
package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string
}

type Notifier struct {
	enabled bool
}

func NewNotifier() *Notifier {
	return &Notifier{enabled: true}
}

func (n *Notifier) SetEnabled(enabled bool) { n.enabled = enabled }

func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}

	args := []string{}
	switch notification.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}
	if notification.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(notification.Timeout.Milliseconds())))
	}
	if notification.Icon != "" {
		args = append(args, "-i", notification.Icon)
	}
	args = append(args, "-a", "prio")
	args = append(args, notification.Title)
	if notification.Body != "" {
		args = append(args, notification.Body)
	}

	return exec.Command("notify-send", args...).Run()
}

// SendDeadline alerts that a task expires within the lookahead window.
func (n *Notifier) SendDeadline(taskText string, dueAt time.Time) error {
	return n.Send(Notification{
		Title:   "⏰ Urgent task",
		Body:    fmt.Sprintf("%q is due in less than an hour!", taskText),
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	})
}

func (n *Notifier) SendLevelUp(level int) error {
	return n.Send(Notification{
		Title:   "LEVEL UP!",
		Body:    fmt.Sprintf("You reached level %d. Performance is hitting legendary tiers.", level),
		Urgency: UrgencyNormal,
		Timeout: 10 * time.Second,
		Icon:    "starred-symbolic",
	})
}

// SendStreakReminder nudges the user before midnight when today has no
// qualifying activity yet.
func (n *Notifier) SendStreakReminder(streak int) error {
	body := "Complete a task before midnight to keep your streak."
	if streak > 0 {
		body = fmt.Sprintf("Your %d-day streak expires at midnight. Complete a task!", streak)
	}
	return n.Send(Notification{
		Title:   "🔥 Streak at risk",
		Body:    body,
		Urgency: UrgencyNormal,
		Timeout: 15 * time.Second,
		Icon:    "alarm-symbolic",
	})
}
