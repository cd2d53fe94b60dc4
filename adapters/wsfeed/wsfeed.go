// Package wsfeed is a generic WebSocket market-data adapter: it maintains
// a reconnecting connection to a venue feed, decodes its wire messages,
// and submits the resulting ticks to a router.Router. It is intentionally
// venue-agnostic — symbol mapping and message shape are the only things a
// concrete venue integration needs to supply.
package wsfeed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/internal/router"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

const (
	reconnectDelay = 5 * time.Second
	pingInterval   = 30 * time.Second
)

// Message is the venue wire shape this feed decodes. A level update
// (EventType "book") carries bid and ask level changes for Symbol, each
// submitted as its own market tick (levels not listed are left as they
// are); a trade update (EventType "trade") carries one executed print.
type Message struct {
	EventType string          `json:"event_type"`
	Symbol    string          `json:"symbol"`
	Bids      [][2]string     `json:"bids"`
	Asks      [][2]string     `json:"asks"`
	Price     string          `json:"price"`
	Quantity  string          `json:"quantity"`
	IsBuy     bool            `json:"is_buy"`
	UpdateID  int64           `json:"update_id"`
}

// Sink is the subset of router.Router this feed drives.
type Sink interface {
	SubmitMarketTick(tick router.MarketTick)
	SubmitTradeTick(tick router.TradeTick)
}

// Feed maintains a reconnecting WebSocket connection to url and submits
// every decoded message to sink.
type Feed struct {
	mu sync.RWMutex

	url  string
	sink Sink

	conn      *websocket.Conn
	connected bool
	running   bool
	stopCh    chan struct{}

	symbols []string
}

// New constructs a feed that will subscribe to symbols once connected.
func New(url string, sink Sink, symbols []string) *Feed {
	return &Feed{url: url, sink: sink, symbols: symbols, stopCh: make(chan struct{})}
}

// Start connects in the background and begins processing messages. It is
// idempotent; calling Start twice without an intervening Stop is a no-op.
func (f *Feed) Start() {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return
	}
	f.running = true
	f.stopCh = make(chan struct{})
	f.mu.Unlock()

	go f.connectionLoop()
	log.Info().Str("url", f.url).Msg("📡 market data feed started")
}

// Stop closes the connection and halts reconnection attempts.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.running = false
	close(f.stopCh)
	if f.conn != nil {
		f.conn.Close()
	}
	log.Info().Msg("market data feed stopped")
}

func (f *Feed) connectionLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		if err := f.connect(); err != nil {
			log.Error().Err(err).Msg("feed connection failed, retrying")
			time.Sleep(reconnectDelay)
			continue
		}

		f.readLoop()
		time.Sleep(reconnectDelay)
	}
}

func (f *Feed) connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.conn = conn
	f.connected = true
	f.mu.Unlock()

	log.Info().Str("url", f.url).Msg("🔌 market data feed connected")

	for _, symbol := range f.symbols {
		conn.WriteJSON(map[string]interface{}{"type": "subscribe", "symbol": symbol})
	}

	go f.pingLoop()
	return nil
}

func (f *Feed) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			f.mu.RLock()
			conn, connected := f.conn, f.connected
			f.mu.RUnlock()
			if connected && conn != nil {
				conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

func (f *Feed) readLoop() {
	for {
		select {
		case <-f.stopCh:
			return
		default:
		}

		f.mu.RLock()
		conn := f.conn
		f.mu.RUnlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warn().Err(err).Msg("feed read error")
			f.mu.Lock()
			f.connected = false
			f.mu.Unlock()
			return
		}

		f.processMessage(message)
	}
}

func (f *Feed) processMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Err(err).Msg("feed: could not decode message, dropping")
		return
	}

	now := time.Now()
	switch msg.EventType {
	case "book":
		f.submitBook(msg, now)
	case "trade":
		f.submitTrade(msg, now)
	default:
		log.Debug().Str("event_type", msg.EventType).Msg("feed: unrecognized event type, dropping")
	}
}

func (f *Feed) submitBook(msg Message, now time.Time) {
	for _, lvl := range msg.Bids {
		price, qty, ok := parseLevel(lvl)
		if !ok {
			continue
		}
		f.sink.SubmitMarketTick(router.MarketTick{
			Symbol: msg.Symbol, Price: price, Quantity: qty,
			Timestamp: now, IsBid: true, UpdateID: msg.UpdateID,
		})
	}
	for _, lvl := range msg.Asks {
		price, qty, ok := parseLevel(lvl)
		if !ok {
			continue
		}
		f.sink.SubmitMarketTick(router.MarketTick{
			Symbol: msg.Symbol, Price: price, Quantity: qty,
			Timestamp: now, IsBid: false, UpdateID: msg.UpdateID,
		})
	}
}

func (f *Feed) submitTrade(msg Message, now time.Time) {
	price, err := xdecimal.Parse(msg.Price)
	if err != nil {
		log.Warn().Err(err).Msg("feed: bad trade price, dropping")
		return
	}
	qty, err := xdecimal.Parse(msg.Quantity)
	if err != nil {
		log.Warn().Err(err).Msg("feed: bad trade quantity, dropping")
		return
	}
	f.sink.SubmitTradeTick(router.TradeTick{
		Symbol: msg.Symbol, Price: price, Quantity: qty,
		Timestamp: now, IsBuy: msg.IsBuy,
	})
}

func parseLevel(lvl [2]string) (xdecimal.Decimal, xdecimal.Decimal, bool) {
	price, err := xdecimal.Parse(lvl[0])
	if err != nil {
		return xdecimal.Decimal{}, xdecimal.Decimal{}, false
	}
	qty, err := xdecimal.Parse(lvl[1])
	if err != nil {
		return xdecimal.Decimal{}, xdecimal.Decimal{}, false
	}
	return price, qty, true
}
