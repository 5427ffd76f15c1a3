package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"TopstepSentinel/internal/model"
)

const dayLayout = "2006-01-02"

// FormatDailyBar formats a found bar into a Telegram message.
func FormatDailyBar(snap *model.Snapshot) string {
	if !snap.Found() {
		return FormatNoBar(snap)
	}
	bar := snap.Bar
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s daily bar</b> | %s\n", html.EscapeString(snap.Symbol), bar.Timestamp.UTC().Format(dayLayout)))
	b.WriteString(fmt.Sprintf("Contract: <code>%s</code>\n\n", html.EscapeString(snap.ContractID)))
	b.WriteString(fmt.Sprintf("Open:   %.2f\n", bar.Open))
	b.WriteString(fmt.Sprintf("High:   %.2f\n", bar.High))
	b.WriteString(fmt.Sprintf("Low:    %.2f\n", bar.Low))
	b.WriteString(fmt.Sprintf("Close:  %.2f\n", bar.Close))
	b.WriteString(fmt.Sprintf("Volume: %d\n", bar.Volume))

	change := bar.Close - bar.Open
	pct := 0.0
	if bar.Open != 0 {
		pct = change / bar.Open * 100
	}
	b.WriteString(fmt.Sprintf("\nChange: %+.2f (%+.2f%%) | Range: %.2f", change, pct, bar.High-bar.Low))
	return b.String()
}

// FormatNoBar explains why a lookup produced no bar.
func FormatNoBar(snap *model.Snapshot) string {
	if snap == nil {
		return "⚠️ No data."
	}
	symbol := html.EscapeString(snap.Symbol)
	if snap.ContractID == "" {
		return fmt.Sprintf("⚠️ <b>%s</b>: no active contract found.", symbol)
	}
	return fmt.Sprintf("⚠️ <b>%s</b>: no closed daily bar in the last 7 days for <code>%s</code>.",
		symbol, html.EscapeString(snap.ContractID))
}

// FormatCredentialStatus reports whether a session token is held and when it
// expires locally. The token itself is never printed.
func FormatCredentialStatus(cred model.Credential, now time.Time) string {
	var b strings.Builder
	b.WriteString("🔐 <b>Session status</b>\n\n")
	switch {
	case !cred.Present():
		b.WriteString("Token: none (will log in on next request)\n")
	case cred.Expired(now):
		b.WriteString(fmt.Sprintf("Token: expired at %s\n", cred.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")))
	default:
		left := cred.ExpiresAt.Sub(now).Round(time.Minute)
		b.WriteString(fmt.Sprintf("Token: valid until %s (%s left)\n", cred.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"), left))
	}
	b.WriteString(fmt.Sprintf("Checked: %s", now.UTC().Format("2006-01-02 15:04 MST")))
	return b.String()
}

// FormatError formats a failed lookup.
func FormatError(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>%s</b> lookup failed: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}

// FormatHelp lists the supported commands.
func FormatHelp(defaultSymbol string) string {
	return fmt.Sprintf("Available commands:\n• /bar [SYMBOL] - last closed daily bar (default %s)\n• /status - session status\n• /help - this message",
		html.EscapeString(defaultSymbol))
}
