package telegram

import (
	"fmt"

	"github.com/valyala/fasttemplate"
)

// Message templates for trade alerts. Rendered with fasttemplate so the
// wording can be tweaked without touching the send path.
const (
	signalTemplate = `📊 *Signal* {{symbol}}
Action: *{{action}}*
Confidence: {{confidence}}%
Price: {{price}}`

	positionOpenedTemplate = `🟢 *Position opened* {{symbol}}
Side: {{side}}
Amount: {{amount}}
Entry: {{entry_price}}
Stop loss: {{stop_loss}}
Take profit: {{take_profit}}`

	positionClosedTemplate = `🔴 *Position closed* {{symbol}}
Side: {{side}}
Exit: {{exit_price}}
PnL: {{pnl}}`
)

func render(template string, params map[string]any) string {
	t := fasttemplate.New(template, "{{", "}}")
	values := make(map[string]any, len(params))
	for k, v := range params {
		values[k] = fmt.Sprint(v)
	}
	return t.ExecuteString(values)
}

// NotifySignal sends a signal alert.
func (r *Telegram) NotifySignal(chatId, symbol, action string, confidence, price float64) error {
	msg := render(signalTemplate, map[string]any{
		"symbol":     symbol,
		"action":     action,
		"confidence": fmt.Sprintf("%.1f", confidence),
		"price":      fmt.Sprintf("%.2f", price),
	})
	return r.Notify(chatId, msg)
}

// NotifyPositionOpened sends an open alert.
func (r *Telegram) NotifyPositionOpened(chatId, symbol, side string, amount, entryPrice, stopLoss, takeProfit float64) error {
	msg := render(positionOpenedTemplate, map[string]any{
		"symbol":      symbol,
		"side":        side,
		"amount":      fmt.Sprintf("%.6f", amount),
		"entry_price": fmt.Sprintf("%.2f", entryPrice),
		"stop_loss":   fmt.Sprintf("%.2f", stopLoss),
		"take_profit": fmt.Sprintf("%.2f", takeProfit),
	})
	return r.Notify(chatId, msg)
}

// NotifyPositionClosed sends a close alert.
func (r *Telegram) NotifyPositionClosed(chatId, symbol, side string, exitPrice, pnl float64) error {
	msg := render(positionClosedTemplate, map[string]any{
		"symbol":     symbol,
		"side":       side,
		"exit_price": fmt.Sprintf("%.2f", exitPrice),
		"pnl":        fmt.Sprintf("%+.2f", pnl),
	})
	return r.Notify(chatId, msg)
}
