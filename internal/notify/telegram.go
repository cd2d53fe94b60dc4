// Package notify implements core.Callbacks over Telegram: fills, cancels,
// rejects, trades, realized P&L changes and errors become formatted chat
// messages; the remaining events are no-ops.
package notify

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/internal/core"
	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/portfolio"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// TelegramNotifier implements core.Callbacks, forwarding the events a
// trader actually wants to see (fills, cancels, rejects, trades) as chat
// messages, and dropping the high-frequency ones (market data echoes, raw
// position marks) to avoid flooding the chat.
type TelegramNotifier struct {
	core.NoopCallbacks

	api    *tgbotapi.BotAPI
	chatID int64

	lastRealizedMu sync.Mutex
	lastRealized   map[string]xdecimal.Decimal
}

// New connects to Telegram using token and targets chatID for every
// notification.
func New(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("notify: TELEGRAM_BOT_TOKEN not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to create bot: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID, lastRealized: make(map[string]xdecimal.Decimal)}, nil
}

func (n *TelegramNotifier) sendMarkdown(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := n.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("📡 failed to send telegram notification")
	}
}

// OnOrderFilled notifies that an order reached FILLED.
func (n *TelegramNotifier) OnOrderFilled(o *order.Order) {
	n.sendMarkdown(fmt.Sprintf("✅ *FILLED*\n\n📊 %s %s\n💵 avg price: *%s*\n📦 quantity: *%s*",
		o.TradingPair, o.Side, o.AverageExecutionPrice(), o.FilledQuantity))
}

// OnOrderCancelled notifies that an order was cancelled.
func (n *TelegramNotifier) OnOrderCancelled(o *order.Order) {
	n.sendMarkdown(fmt.Sprintf("🚫 *CANCELLED*\n\n📊 %s %s\n📦 remaining: *%s*",
		o.TradingPair, o.Side, o.Remaining()))
}

// OnOrderRejected notifies that an order was rejected pre-trade.
func (n *TelegramNotifier) OnOrderRejected(o *order.Order) {
	n.sendMarkdown(fmt.Sprintf("⛔ *REJECTED*\n\n📊 %s %s\n📝 %s",
		o.TradingPair, o.Side, o.RejectionReason))
}

// OnTradeExecuted notifies that a trade was booked.
func (n *TelegramNotifier) OnTradeExecuted(t portfolio.Trade) {
	n.sendMarkdown(fmt.Sprintf("📈 *TRADE*\n\n📊 %s %s\n💵 price: *%s*\n📦 quantity: *%s*",
		t.Symbol, t.Side, t.Price, t.Quantity))
}

// OnPositionUpdate notifies of a realized P&L change on a position, the
// one position event worth interrupting a trader for. markToMarket fires
// this on every book tick for any symbol with an open position, so this
// only sends when RealizedPnL differs from the previous position update
// for that symbol; the first update seen for a symbol only records it.
func (n *TelegramNotifier) OnPositionUpdate(p portfolio.Position) {
	n.lastRealizedMu.Lock()
	prev, seen := n.lastRealized[p.Symbol]
	changed := seen && !prev.Equal(p.RealizedPnL)
	n.lastRealized[p.Symbol] = p.RealizedPnL
	n.lastRealizedMu.Unlock()

	if !changed {
		return
	}
	n.sendMarkdown(fmt.Sprintf("💰 *P&L* %s\n\n🏦 realized: *%s*\n📐 unrealized: *%s*\n📦 quantity: *%s*",
		p.Symbol, sign(p.RealizedPnL), sign(p.UnrealizedPnL), p.Quantity))
}

// OnError notifies of an internal error reported by TradingCore.
func (n *TelegramNotifier) OnError(source, message string) {
	n.sendMarkdown(fmt.Sprintf("⚠️ *ERROR* (%s)\n\n%s", source, message))
}

// sign renders a Decimal with an explicit "+" for non-negative values, the
// usual P&L display convention.
func sign(d xdecimal.Decimal) string {
	if d.IsNegative() {
		return d.String()
	}
	return "+" + d.String()
}
