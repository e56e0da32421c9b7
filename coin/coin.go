package coin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/custody/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

// NewCoin creates a new coin object
func NewCoin(amount uint64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: amount,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount uint64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Add combines two coins.
// Returns error if they are of different
// currencies, or if the combination would cause
// an overflow
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}
	if o.Amount > math.MaxUint64-c.Amount {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s + %s", c, o)
	}
	return Coin{Ticker: c.Ticker, Amount: c.Amount + o.Amount}, nil
}

// Subtract takes the other coin away from this one.
// Returns ErrInsufficientAmount if the result would be negative.
func (c Coin) Subtract(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "subtracting %s from %s", o.Ticker, c.Ticker)
	}
	if o.Amount > c.Amount {
		return Coin{}, errors.Wrapf(errors.ErrInsufficientAmount, "%s - %s", c, o)
	}
	return Coin{Ticker: c.Ticker, Amount: c.Amount - o.Amount}, nil
}

// Multiply returns the coin amount multiplied by the given factor.
func (c Coin) Multiply(times uint64) (Coin, error) {
	if times != 0 && c.Amount > math.MaxUint64/times {
		return Coin{}, errors.Wrapf(errors.ErrOverflow, "%s * %d", c, times)
	}
	return Coin{Ticker: c.Ticker, Amount: c.Amount * times}, nil
}

// Compare will check values of two coins, without
// inspecting the currency code. It is up to the caller
// to determine if they want to check this.
// It also assumes they were already normalized.
//
// Returns 1 if c is larger, -1 if o is larger, 0 if equal
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Amount > o.Amount:
		return 1
	case c.Amount < o.Amount:
		return -1
	}
	return 0
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// IsZero returns true amounts are 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if the value is greater than 0
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// IsGTE returns true if c is same type and at least
// as large as o.
// It assumes both are already normalized.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if they have the same currency
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	return &Coin{Ticker: c.Ticker, Amount: c.Amount}
}

// Validate ensures that the coin is in the valid range
// and valid currency code. It accepts zero values.
func (c *Coin) Validate() error {
	if c == nil {
		return errors.Wrap(errors.ErrEmpty, "coin")
	}
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker: %q", c.Ticker)
	}
	return nil
}

// String provides a human readable representation of the coin. This
// function is meant mostly for testing and debugging. For a valid coin the
// result is a valid human readable format that can be parsed back.
func (c Coin) String() string {
	if c.Ticker == "" {
		return strconv.FormatUint(c.Amount, 10)
	}
	return strconv.FormatUint(c.Amount, 10) + " " + c.Ticker
}

// UnmarshalJSON provides a custom JSON deserialization. It accepts both the
// human readable "<amount> <ticker>" string and the object representation.
func (c *Coin) UnmarshalJSON(raw []byte) error {
	if bytes.HasPrefix(raw, []byte(`"`)) {
		var human string
		if err := json.Unmarshal(raw, &human); err != nil {
			return errors.Wrap(errors.ErrInvalidInput, err.Error())
		}
		parsed, err := ParseHumanFormat(human)
		if err == nil {
			*c = parsed
		}
		return err
	}

	var obj struct {
		Ticker string `json:"ticker"`
		Amount uint64 `json:"amount"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	*c = Coin{Ticker: obj.Ticker, Amount: obj.Amount}
	return nil
}

// ParseHumanFormat parses a human readable coin representation. The format
// is an unsigned number of base units followed by the ticker, separated by
// whitespace, for example "120 IOV".
func ParseHumanFormat(h string) (Coin, error) {
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return Coin{}, errors.Wrapf(errors.ErrInvalidInput, "invalid coin format %q", h)
	}
	amount, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Coin{}, errors.Wrapf(errors.ErrInvalidInput, "invalid amount %q", parts[0])
	}
	c := Coin{Ticker: parts[1], Amount: amount}
	if err := c.Validate(); err != nil {
		return Coin{}, err
	}
	return c, nil
}

// Set updates this coin value to what is provided. This method implements
// flag.Value interface.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}

var _ fmt.Stringer = Coin{}
