// Package execstub is an illustrative external execution venue client: it
// signs outbound orders with an EIP-712-flavored attestation the way a
// real on-chain CLOB would require, then turns the venue's response into
// a core.FillReport. It exists to show how TradingCore's event-driven
// core is meant to be fed from an external execution path rather than
// only from the in-process order book.
package execstub

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog/log"

	"github.com/arvindk/tradecore/internal/core"
	"github.com/arvindk/tradecore/internal/order"
	"github.com/arvindk/tradecore/pkg/xdecimal"
)

// EIP-712 domain constants for the illustrative venue. A real venue would
// publish its own contract address and chain id; these stand in for a
// generic EVM settlement layer.
const (
	domainName       = "TradeCore Execution Venue"
	domainVersion    = "1"
	defaultChainID   = 137
	settlementTimeout = 10 * time.Second
)

// SignedOrder is the wire-level attestation submitted to the venue,
// shaped after a typical EIP-712 limit-order struct.
type SignedOrder struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	Expiration    string `json:"expiration"`
	Signature     string `json:"signature"`
}

type venueResponse struct {
	ExchangeOrderID string `json:"exchangeOrderId"`
	FillPrice       string `json:"fillPrice"`
	FillQuantity    string `json:"fillQuantity"`
	FeeAmount       string `json:"feeAmount"`
	FeeCurrency     string `json:"feeCurrency"`
	ErrorMsg        string `json:"errorMsg"`
}

// Client submits signed orders to an external execution venue and
// translates its fills back into core.FillReport values.
type Client struct {
	venueURL   string
	privateKey *ecdsa.PrivateKey
	address    string
	chainID    int64
	dryRun     bool
	httpClient *http.Client
}

// New constructs a venue client. privateKeyHex signs outbound order
// attestations (0x prefix tolerated); when venueURL is empty, or dryRun
// is true, SubmitOrder never makes a network call and instead synthesizes
// an immediate full fill at the order's own price — useful for backtests
// and for development without a live counterparty.
func New(privateKeyHex, venueURL string, dryRun bool) (*Client, error) {
	c := &Client{
		venueURL:   venueURL,
		chainID:    defaultChainID,
		dryRun:     dryRun || venueURL == "",
		httpClient: &http.Client{Timeout: settlementTimeout},
	}

	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")
	if privateKeyHex != "" {
		pk, err := crypto.HexToECDSA(privateKeyHex)
		if err != nil {
			return nil, fmt.Errorf("execstub: invalid private key: %w", err)
		}
		c.privateKey = pk
		c.address = crypto.PubkeyToAddress(pk.PublicKey).Hex()
	}

	mode := "LIVE"
	if c.dryRun {
		mode = "DRY RUN"
	}
	log.Info().Str("mode", mode).Str("address", c.address).Msg("🔐 execution venue client initialized")
	return c, nil
}

// SubmitOrder signs o and submits it to the venue, returning the resulting
// fill. The caller is expected to feed the result into
// TradingCore.SubmitFillReport.
func (c *Client) SubmitOrder(o *order.Order) (core.FillReport, error) {
	signed, err := c.buildSignedOrder(o)
	if err != nil {
		return core.FillReport{}, fmt.Errorf("execstub: sign order: %w", err)
	}

	if c.dryRun {
		log.Debug().Str("client_order_id", o.ClientOrderID).Msg("📝 dry run: synthesizing immediate fill")
		return core.FillReport{
			ClientOrderID:   o.ClientOrderID,
			ExchangeOrderID: fmt.Sprintf("DRY_%d", o.CreationTime.UnixNano()),
			Symbol:          o.TradingPair,
			Side:            o.Side,
			Price:           o.Price,
			Quantity:        o.Quantity,
			FeeAmount:       xdecimal.Zero,
			FeeCurrency:     o.QuoteCcy,
		}, nil
	}

	body, err := json.Marshal(signed)
	if err != nil {
		return core.FillReport{}, fmt.Errorf("execstub: marshal order: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.venueURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return core.FillReport{}, fmt.Errorf("execstub: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.FillReport{}, fmt.Errorf("execstub: submit order: %w", err)
	}
	defer resp.Body.Close()

	var vr venueResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return core.FillReport{}, fmt.Errorf("execstub: decode venue response: %w", err)
	}
	if vr.ErrorMsg != "" {
		return core.FillReport{}, fmt.Errorf("execstub: venue rejected order: %s", vr.ErrorMsg)
	}

	price, err := xdecimal.Parse(vr.FillPrice)
	if err != nil {
		return core.FillReport{}, fmt.Errorf("execstub: parse fill price: %w", err)
	}
	qty, err := xdecimal.Parse(vr.FillQuantity)
	if err != nil {
		return core.FillReport{}, fmt.Errorf("execstub: parse fill quantity: %w", err)
	}
	fee := xdecimal.Zero
	if vr.FeeAmount != "" {
		fee, err = xdecimal.Parse(vr.FeeAmount)
		if err != nil {
			return core.FillReport{}, fmt.Errorf("execstub: parse fee: %w", err)
		}
	}

	log.Info().Str("client_order_id", o.ClientOrderID).Str("exchange_order_id", vr.ExchangeOrderID).
		Msg("✅ venue order filled")

	return core.FillReport{
		ClientOrderID:   o.ClientOrderID,
		ExchangeOrderID: vr.ExchangeOrderID,
		Symbol:          o.TradingPair,
		Side:            o.Side,
		Price:           price,
		Quantity:        qty,
		FeeAmount:       fee,
		FeeCurrency:     vr.FeeCurrency,
	}, nil
}

func (c *Client) buildSignedOrder(o *order.Order) (*SignedOrder, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}

	expiration := "0"
	if o.ExpiryTime != nil {
		expiration = fmt.Sprintf("%d", o.ExpiryTime.Unix())
	}

	signed := &SignedOrder{
		Salt:       salt,
		Maker:      c.address,
		Symbol:     o.TradingPair,
		Side:       o.Side.String(),
		Price:      o.Price.String(),
		Quantity:   o.Quantity.String(),
		Expiration: expiration,
	}

	if c.privateKey == nil {
		return signed, nil
	}
	sig, err := c.signEIP712(signed)
	if err != nil {
		return nil, err
	}
	signed.Signature = sig
	return signed, nil
}

// signEIP712 signs keccak256("\x19\x01" || domainSeparator || structHash),
// the standard EIP-712 encoding, over the order's fields.
func (c *Client) signEIP712(o *SignedOrder) (string, error) {
	domainSeparator := c.domainSeparator()
	structHash := orderStructHash(o)

	var data []byte
	data = append(data, []byte("\x19\x01")...)
	data = append(data, domainSeparator[:]...)
	data = append(data, structHash[:]...)

	hash := crypto.Keccak256(data)
	sig, err := crypto.Sign(hash, c.privateKey)
	if err != nil {
		return "", err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return hexutil.Encode(sig), nil
}

func (c *Client) domainSeparator() [32]byte {
	typeHash := crypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId)"))
	nameHash := crypto.Keccak256([]byte(domainName))
	versionHash := crypto.Keccak256([]byte(domainVersion))
	chainIDBytes := common.LeftPadBytes(big.NewInt(c.chainID).Bytes(), 32)

	var data []byte
	data = append(data, typeHash...)
	data = append(data, nameHash...)
	data = append(data, versionHash...)
	data = append(data, chainIDBytes...)

	var result [32]byte
	copy(result[:], crypto.Keccak256(data))
	return result
}

func orderStructHash(o *SignedOrder) [32]byte {
	typeHash := crypto.Keccak256([]byte(
		"Order(uint256 salt,address maker,string symbol,string side,string price,string quantity,uint256 expiration)"))

	salt := padUint256(o.Salt)
	maker := common.LeftPadBytes(common.HexToAddress(o.Maker).Bytes(), 32)
	symbolHash := crypto.Keccak256([]byte(o.Symbol))
	sideHash := crypto.Keccak256([]byte(o.Side))
	priceHash := crypto.Keccak256([]byte(o.Price))
	quantityHash := crypto.Keccak256([]byte(o.Quantity))
	expiration := padUint256(o.Expiration)

	var data []byte
	data = append(data, typeHash...)
	data = append(data, salt...)
	data = append(data, maker...)
	data = append(data, symbolHash...)
	data = append(data, sideHash...)
	data = append(data, priceHash...)
	data = append(data, quantityHash...)
	data = append(data, expiration...)

	var result [32]byte
	copy(result[:], crypto.Keccak256(data))
	return result
}

func padUint256(s string) []byte {
	n := new(big.Int)
	n.SetString(s, 10)
	return common.LeftPadBytes(n.Bytes(), 32)
}

func generateSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return new(big.Int).SetBytes(b).String(), nil
}
