package root

import (
	"fmt"
	"io"

	"prio/internal/event"
	"prio/internal/ui"
)

// subscribeToasts prints the core's events as styled one-liners.
func subscribeToasts(bus *event.Bus, out io.Writer) {
	bus.Subscribe(func(e event.Event) {
		switch ev := e.(type) {
		case event.XPAwarded:
			fmt.Fprintf(out, "%s %s\n", ui.Key.Render(fmt.Sprintf("+%d XP", ev.Amount)), ui.Muted.Render(ev.Reason))
		case event.LevelUp:
			fmt.Fprintf(out, "%s %s\n", ui.Gold.Render(ui.IconMedal+" LEVEL UP!"), fmt.Sprintf("You reached level %d.", ev.Level))
		case event.StreakChanged:
			if ev.Broken {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconIce+" Streak lost. Start again!"))
			} else {
				fmt.Fprintf(out, "%s\n", ui.Warn.Render(fmt.Sprintf("%s Streak! %d day(s) in a row", ui.IconFlame, ev.Streak)))
			}
		case event.TaskCreated:
			fmt.Fprintf(out, "%s\n", ui.Muted.Render(">> NEW DIRECTIVE: "+ev.Preview))
		case event.TaskCompleted:
			fmt.Fprintf(out, "%s\n", ui.Muted.Render(">> OBJECTIVE REACHED: "+ev.Text))
		case event.DeadlineImminent:
			fmt.Fprintf(out, "%s %s\n", ui.Bad.Render(ui.IconClock+" Urgent:"), fmt.Sprintf("%q is due in less than an hour", ev.Text))
		}
	})
}
