package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/internal/ports"
	"github.com/betbot/pairmaker/pkg/ratelimit"
	sdkhttp "github.com/betbot/pairmaker/pkg/sdk/http"
)

const DefaultURL = "https://api.exmo.com/v1"

var log = logrus.WithField("component", "exchange")

var (
	_ ports.Gateway       = (*Client)(nil)
	_ ports.Authenticator = (*Client)(nil)
	_ ports.Gateway       = (*DryRunGateway)(nil)
)

// Credentials are the API key pair used to sign private calls.
type Credentials struct {
	Key    string
	Secret string
}

type Options struct {
	URL     string
	Timeout time.Duration
	// Limiter paces private calls; nil means unlimited.
	Limiter ratelimit.RateLimiter
}

// Client is the exchange Gateway: every private call is a signed form POST
// to {url}/{method} carrying a strictly increasing nonce.
type Client struct {
	http    *sdkhttp.Client
	creds   Credentials
	limiter ratelimit.RateLimiter

	mu        sync.Mutex
	lastNonce int64
	now       func() time.Time
}

func NewClient(creds Credentials, opts Options) *Client {
	url := opts.URL
	if url == "" {
		url = DefaultURL
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	return &Client{
		http:    sdkhttp.NewClient(url, opts.Timeout),
		creds:   creds,
		limiter: limiter,
		now:     time.Now,
	}
}

func (c *Client) nextNonce() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.now().UnixNano()
	if n <= c.lastNonce {
		n = c.lastNonce + 1
	}
	c.lastNonce = n
	return n
}

// call signs and sends one private method and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	form := make(map[string]string, len(params)+1)
	for k, v := range params {
		form[k] = v
	}
	form["nonce"] = formatNonce(c.nextNonce())

	resp, err := c.http.DoRequest(ctx, http.MethodPost, "/"+method, &sdkhttp.RequestOptions{
		Headers: map[string]string{
			"Key":  c.creds.Key,
			"Sign": Sign(c.creds.Secret, encodeForm(form)),
		},
		Form: form,
	})
	if err != nil {
		return errors.Wrap(err, method)
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) > 0 && body[0] == '{' {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil {
			if env.Error != "" {
				return classify(method, env.Error)
			}
			if env.Result != nil && !*env.Result {
				return &domain.APIError{Op: method, Message: "result=false"}
			}
		}
	}
	if out == nil {
		return nil
	}
	// an empty result set comes back as []
	if bytes.Equal(body, []byte("[]")) {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.APIError{Op: method, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

var authMarkers = []string{"40005", "40017", "authoriz", "api key", "signature"}

func classify(method, msg string) error {
	lower := strings.ToLower(msg)
	for _, m := range authMarkers {
		if strings.Contains(lower, m) {
			return &domain.AuthError{Message: msg}
		}
	}
	return &domain.APIError{Op: method, Message: msg}
}

// Authenticate checks the key pair with a user_info call.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.creds.Key == "" || c.creds.Secret == "" {
		return &domain.AuthError{Message: "api key and secret are required"}
	}
	var info userInfoResponse
	if err := c.call(ctx, "user_info", nil, &info); err != nil {
		return err
	}
	log.Infof("已登录交易所 uid=%s", info.UID)
	return nil
}

// GetBalances returns available balances; unparsable entries are skipped.
func (c *Client) GetBalances(ctx context.Context) (domain.Balances, error) {
	var info userInfoResponse
	if err := c.call(ctx, "user_info", nil, &info); err != nil {
		return nil, err
	}
	balances := make(domain.Balances, len(info.Balances))
	for cur, raw := range info.Balances {
		v, err := raw.Float()
		if err != nil {
			log.Warnf("忽略无法解析的余额 %s=%q", cur, raw)
			continue
		}
		balances[strings.ToUpper(cur)] = v
	}
	return balances, nil
}

// GetOpenOrders returns all open orders, sorted by pair then id.
func (c *Client) GetOpenOrders(ctx context.Context) ([]domain.Order, error) {
	raw := map[string][]openOrder{}
	if err := c.call(ctx, "user_open_orders", nil, &raw); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var orders []domain.Order
	for _, key := range keys {
		for _, oo := range raw[key] {
			o, err := oo.toDomain(key)
			if err != nil {
				log.WithError(err).Warnf("忽略无法解析的挂单 %s/%s", key, oo.OrderID)
				continue
			}
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (oo openOrder) toDomain(key string) (domain.Order, error) {
	pairStr := oo.Pair
	if pairStr == "" {
		pairStr = key
	}
	pair, err := domain.ParsePair(pairStr)
	if err != nil {
		return domain.Order{}, err
	}
	side, err := domain.ParseSide(strings.ToLower(oo.Type))
	if err != nil {
		return domain.Order{}, err
	}
	price, err := oo.Price.Float()
	if err != nil {
		return domain.Order{}, fmt.Errorf("price: %w", err)
	}
	qty, err := oo.Quantity.Float()
	if err != nil {
		return domain.Order{}, fmt.Errorf("quantity: %w", err)
	}
	return domain.Order{ID: string(oo.OrderID), Pair: pair, Side: side, Price: price, Amount: qty}, nil
}

// CreateOrder places a limit order. The amount goes out unrounded.
func (c *Client) CreateOrder(ctx context.Context, side domain.Side, pair domain.Pair, amount, price float64) error {
	if !side.Valid() {
		return &domain.ValidationError{Field: "side", Reason: string(side)}
	}
	if amount <= 0 || price <= 0 {
		return &domain.ValidationError{Field: "order", Reason: fmt.Sprintf("amount=%v price=%v must be positive", amount, price)}
	}
	var out orderCreateResponse
	err := c.call(ctx, "order_create", map[string]string{
		"pair":     pair.String(),
		"quantity": formatNumber(amount),
		"price":    formatNumber(price),
		"type":     string(side),
	}, &out)
	if err != nil {
		return err
	}
	log.WithField("pair", pair.String()).Debugf("order_create ok id=%s", out.OrderID)
	return nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return &domain.ValidationError{Field: "order_id", Reason: "empty"}
	}
	return c.call(ctx, "order_cancel", map[string]string{"order_id": orderID}, nil)
}
