package courtwatch

import (
	"fmt"
	"strconv"

	"github.com/hazyhaar/courtwatch/internal/watchlist"
)

// renderAlert maps one WatchlistProcessor Alert to its fixed push
// title/body pair, one per alert shape.
func renderAlert(a watchlist.Alert) (title, body string) {
	caseNumber := a.Watchlist.CaseNumber
	switch a.Type {
	case watchlist.AlertEarlyWarning:
		pos := "?"
		if a.Position != nil {
			pos = strconv.Itoa(*a.Position)
		}
		return fmt.Sprintf("⚠️ Case Approaching - %s", caseNumber),
			fmt.Sprintf("Your case is %s cases away in Court %s", pos, a.CourtNumber)
	case watchlist.AlertApproaching:
		return fmt.Sprintf("🔔 Case Next - %s", caseNumber),
			fmt.Sprintf("Your case is next in line in Court %s", a.CourtNumber)
	case watchlist.AlertInSession:
		body := fmt.Sprintf("Your case is now IN SESSION in Court %s", a.CourtNumber)
		if a.JudgeName != "" {
			body += fmt.Sprintf(" - %s", a.JudgeName)
		}
		return fmt.Sprintf("⚖️ Case Started - %s", caseNumber), body
	case watchlist.AlertCompleted:
		return fmt.Sprintf("✅ Case Completed - %s", caseNumber),
			fmt.Sprintf("Your case hearing has ended in Court %s", a.CourtNumber)
	default:
		return "", ""
	}
}

// alertData is the dataMap companion to the title/body pair, handed to the
// Pusher alongside the human-readable message.
func alertData(a watchlist.Alert) map[string]string {
	data := map[string]string{
		"type":        string(a.Type),
		"caseNumber":  a.Watchlist.CaseNumber,
		"courtNumber": a.CourtNumber,
	}
	if a.Position != nil {
		data["position"] = strconv.Itoa(*a.Position)
	}
	if a.Velocity != 0 {
		data["velocity"] = strconv.Itoa(a.Velocity)
	}
	if a.StreamURL != "" {
		data["streamUrl"] = a.StreamURL
	}
	return data
}
