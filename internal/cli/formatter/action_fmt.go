package formatter

import (
	"fmt"
	"strings"
)

// FormatTracked confirms recorded time. link is omitted when empty.
func FormatTracked(duration, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tracking %s of time\n", StyleGreen.Render(duration))
	if link != "" {
		fmt.Fprintf(&b, "Link to ticket: %s\n", Link(link))
	}
	return b.String()
}

func FormatCreatedTicket(link string) string {
	return fmt.Sprintf("Created ticket: %s\n", Link(link))
}

func FormatCreatedChange(sysID, link string) string {
	return fmt.Sprintf("Created std chg: %s\nLink to CHG: %s\n", sysID, Link(link))
}

func FormatCancelled(what string) string {
	return Dim(fmt.Sprintf("Cancelled, %s.", what)) + "\n"
}

// FormatSetupDone reports where the config landed and which bin it uses.
func FormatSetupDone(path, bin string) string {
	return RenderBox("Setup complete", KeyValue("config", path)+"\n"+KeyValue("bin", bin)) + "\n"
}
