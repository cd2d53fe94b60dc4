// Package ledger persists orders, trades, and position snapshots to
// stable storage for audit purposes. It is a consumer of TradingCore's
// outbound events, not a dependency of the core itself — the core's own
// export_state/import_state round-trip in §4.6 remains the in-memory
// snapshot/restore mechanism this package does not replace.
package ledger

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/internal/portfolio"
)

// OrderRecord is the durable row for one order, upserted by RecordOrder.
type OrderRecord struct {
	ClientOrderID   string `gorm:"primaryKey"`
	TradingPair     string `gorm:"index"`
	Side            string
	Type            string
	Price           string
	Quantity        string
	FilledQuantity  string
	Status          string `gorm:"index"`
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TradeRecord is the durable row for one executed trade.
type TradeRecord struct {
	TradeID         string `gorm:"primaryKey"`
	ClientOrderID   string `gorm:"index"`
	ExchangeOrderID string
	Symbol          string `gorm:"index"`
	Side            string
	Price           string
	Quantity        string
	Fee             string
	FeeCurrency     string
	Timestamp       time.Time
	CreatedAt       time.Time
}

// PositionSnapshot is a point-in-time durable row for one symbol's
// position, written by RecordPositionSnapshot for audit (cmd/tradecore
// writes one per position at shutdown; not used to restore
// in-memory state — that is ExportState/ImportState's job).
type PositionSnapshot struct {
	ID           uint `gorm:"primaryKey;autoIncrement"`
	Symbol       string `gorm:"index"`
	Quantity     string
	AveragePrice string
	RealizedPnL  string
	Timestamp    time.Time
	CreatedAt    time.Time
}

// Ledger wraps a gorm connection to either sqlite (default, file-backed)
// or postgres (connection-string prefixed "postgres://"/"postgresql://").
type Ledger struct {
	db *gorm.DB
}

// Open connects using driver ("sqlite" or "postgres") and dsn, then
// migrates the ledger's own tables. Driver is ignored when dsn itself
// carries a postgres:// scheme, matching the teacher's dialect-sniffing
// convention.
func Open(driver, dsn string) (*Ledger, error) {
	var db *gorm.DB
	var err error

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if driver == "postgres" || strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("📒 ledger connected (postgres)")
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", dsn).Msg("📒 ledger connected (sqlite)")
	}

	if err := db.AutoMigrate(&OrderRecord{}, &TradeRecord{}, &PositionSnapshot{}); err != nil {
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// RecordOrder upserts the durable row for o.
func (l *Ledger) RecordOrder(o *order.Order) error {
	rec := OrderRecord{
		ClientOrderID:   o.ClientOrderID,
		TradingPair:     o.TradingPair,
		Side:            o.Side.String(),
		Type:            o.Type.String(),
		Price:           o.Price.String(),
		Quantity:        o.Quantity.String(),
		FilledQuantity:  o.FilledQuantity.String(),
		Status:          o.StatusSnapshot().String(),
		RejectionReason: o.RejectionReason,
		UpdatedAt:       o.LastUpdateTime,
	}
	return l.db.Save(&rec).Error
}

// RecordTrade inserts a durable row for t.
func (l *Ledger) RecordTrade(t portfolio.Trade) error {
	rec := TradeRecord{
		TradeID:         t.TradeID,
		ClientOrderID:   t.ClientOrderID,
		ExchangeOrderID: t.ExchangeOrderID,
		Symbol:          t.Symbol,
		Side:            t.Side,
		Price:           t.Price.String(),
		Quantity:        t.Quantity.String(),
		Fee:             t.Fee.String(),
		FeeCurrency:     t.FeeCurrency,
		Timestamp:       t.Timestamp,
	}
	return l.db.Create(&rec).Error
}

// RecordPositionSnapshot inserts a point-in-time row for p.
func (l *Ledger) RecordPositionSnapshot(p portfolio.Position, at time.Time) error {
	rec := PositionSnapshot{
		Symbol:       p.Symbol,
		Quantity:     p.Quantity.String(),
		AveragePrice: p.AveragePrice.String(),
		RealizedPnL:  p.RealizedPnL.String(),
		Timestamp:    at,
	}
	return l.db.Create(&rec).Error
}

// RecentTrades returns the most recent trades, optionally filtered to one
// symbol, newest first.
func (l *Ledger) RecentTrades(symbol string, limit int) ([]TradeRecord, error) {
	var out []TradeRecord
	q := l.db.Order("timestamp desc").Limit(limit)
	if symbol != "" {
		q = q.Where("symbol = ?", symbol)
	}
	err := q.Find(&out).Error
	return out, err
}

// OrderByID looks up the durable row for a client order id.
func (l *Ledger) OrderByID(clientOrderID string) (*OrderRecord, error) {
	var rec OrderRecord
	err := l.db.First(&rec, "client_order_id = ?", clientOrderID).Error
	return &rec, err
}
