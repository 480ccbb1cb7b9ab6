package exchange

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// envelope is the error shape every private method may return.
type envelope struct {
	Result *bool  `json:"result"`
	Error  string `json:"error"`
}

// flexString accepts both "123" and 123.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) Float() (float64, error) {
	d, err := decimal.NewFromString(string(f))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

type userInfoResponse struct {
	UID      flexString            `json:"uid"`
	Balances map[string]flexString `json:"balances"`
	Reserved map[string]flexString `json:"reserved"`
}

type openOrder struct {
	OrderID  flexString `json:"order_id"`
	Created  flexString `json:"created"`
	Type     string     `json:"type"`
	Pair     string     `json:"pair"`
	Price    flexString `json:"price"`
	Quantity flexString `json:"quantity"`
	Amount   flexString `json:"amount"`
}

type orderCreateResponse struct {
	OrderID flexString `json:"order_id"`
}

// formatNumber is the wire form of a price or quantity: full precision, no exponent.
func formatNumber(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func formatNonce(n int64) string {
	return strconv.FormatInt(n, 10)
}
