// Package rest is the HTTP execution venue and candle history source.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"direction-bot/internal/decision"
	"direction-bot/internal/exchange"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// ErrRejected reports an order the venue refused.
var ErrRejected = errors.New("order rejected")

const (
	placeOrderPath = "/api/v1/options/place_order"
	candlesPath    = "/api/v1/market/candles"
)

type Client struct {
	key, secret, base string
	rest              *resty.Client
	now               func() time.Time
}

func New(key, secret, base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	return &Client{key: key, secret: secret, base: base, rest: r, now: time.Now}
}

type orderReq struct {
	Pair      string  `json:"pair"`
	Direction string  `json:"direction"` // call or put
	Amount    float64 `json:"amount"`
	Duration  int     `json:"duration"` // minutes
}

type orderResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		OrderID string `json:"orderId"`
	} `json:"data"`
}

// PlaceOrder sends a signed order and returns the venue's order id.
func (c *Client) PlaceOrder(ctx context.Context, instr decision.TradeInstruction) (exchange.OrderReference, error) {
	dir, err := decision.ParseDirection(string(instr.Direction))
	if err != nil {
		return exchange.OrderReference{}, err
	}

	body, err := json.Marshal(orderReq{
		Pair:      instr.Pair,
		Direction: string(dir),
		Amount:    instr.Amount,
		Duration:  instr.DurationMinutes,
	})
	if err != nil {
		return exchange.OrderReference{}, fmt.Errorf("encode order: %w", err)
	}

	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	nonce := ts
	sign := Sign(c.secret, nonce, c.key, ts, string(body))

	resp := &orderResp{}
	r, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("api-key", c.key).
		SetHeader("nonce", nonce).
		SetHeader("timestamp", ts).
		SetHeader("sign", sign).
		SetBody(body).
		SetResult(resp).
		Post(c.base + placeOrderPath)
	if err != nil {
		return exchange.OrderReference{}, fmt.Errorf("place order: %w", err)
	}
	if r.IsError() {
		return exchange.OrderReference{}, fmt.Errorf("place order: status %d, body: %s", r.StatusCode(), r.String())
	}
	if resp.Code != 0 {
		return exchange.OrderReference{}, fmt.Errorf("%w: %d %s", ErrRejected, resp.Code, resp.Msg)
	}

	log.Debug().
		Str("pair", instr.Pair).
		Str("direction", string(dir)).
		Str("order_id", resp.Data.OrderID).
		Msg("order accepted")

	return exchange.OrderReference{
		ID:       resp.Data.OrderID,
		Venue:    "rest",
		PlacedAt: c.now(),
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.rest.GetClient().CloseIdleConnections()
	return nil
}
