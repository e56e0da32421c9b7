package coin

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/weavetest/assert"
)

func TestCompareCoin(t *testing.T) {
	cases := map[string]struct {
		a       Coin
		b       Coin
		wantRes int
	}{
		"a greater than b": {
			a:       NewCoin(20, "ABC"),
			b:       NewCoin(19, "ABC"),
			wantRes: 1,
		},
		"a smaller than b": {
			a:       NewCoin(1, "FOO"),
			b:       NewCoin(2, "FOO"),
			wantRes: -1,
		},
		"zero value coins": {
			a:       Coin{},
			b:       Coin{},
			wantRes: 0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantRes, tc.a.Compare(tc.b))
		})
	}
}

func TestCoinAdd(t *testing.T) {
	cases := map[string]struct {
		a       Coin
		b       Coin
		want    Coin
		wantErr *errors.Error
	}{
		"same ticker": {
			a:    NewCoin(7, "IOV"),
			b:    NewCoin(5, "IOV"),
			want: NewCoin(12, "IOV"),
		},
		"different ticker": {
			a:       NewCoin(7, "IOV"),
			b:       NewCoin(5, "ETH"),
			wantErr: errors.ErrCurrency,
		},
		"overflow": {
			a:       NewCoin(math.MaxUint64, "IOV"),
			b:       NewCoin(1, "IOV"),
			wantErr: errors.ErrOverflow,
		},
		"max value": {
			a:    NewCoin(math.MaxUint64-1, "IOV"),
			b:    NewCoin(1, "IOV"),
			want: NewCoin(math.MaxUint64, "IOV"),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.a.Add(tc.b)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoinSubtract(t *testing.T) {
	a := NewCoin(10, "IOV")

	got, err := a.Subtract(NewCoin(4, "IOV"))
	assert.Nil(t, err)
	assert.Equal(t, NewCoin(6, "IOV"), got)

	got, err = a.Subtract(a)
	assert.Nil(t, err)
	assert.Equal(t, true, got.IsZero())

	_, err = a.Subtract(NewCoin(11, "IOV"))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	_, err = a.Subtract(NewCoin(1, "ETH"))
	assert.IsErr(t, errors.ErrCurrency, err)
}

func TestCoinMultiply(t *testing.T) {
	got, err := NewCoin(3, "IOV").Multiply(4)
	assert.Nil(t, err)
	assert.Equal(t, NewCoin(12, "IOV"), got)

	got, err = NewCoin(3, "IOV").Multiply(0)
	assert.Nil(t, err)
	assert.Equal(t, true, got.IsZero())

	_, err = NewCoin(math.MaxUint64/2+1, "IOV").Multiply(2)
	assert.IsErr(t, errors.ErrOverflow, err)
}

func TestIsGTE(t *testing.T) {
	assert.Equal(t, true, NewCoin(5, "IOV").IsGTE(NewCoin(5, "IOV")))
	assert.Equal(t, true, NewCoin(6, "IOV").IsGTE(NewCoin(5, "IOV")))
	assert.Equal(t, false, NewCoin(4, "IOV").IsGTE(NewCoin(5, "IOV")))
	assert.Equal(t, false, NewCoin(6, "ETH").IsGTE(NewCoin(5, "IOV")))
}

func TestValidateCoin(t *testing.T) {
	cases := map[string]struct {
		coin    *Coin
		wantErr *errors.Error
	}{
		"valid":           {coin: NewCoinp(1, "IOV")},
		"zero is valid":   {coin: NewCoinp(0, "ETH")},
		"nil":             {coin: nil, wantErr: errors.ErrEmpty},
		"lower case":      {coin: NewCoinp(1, "iov"), wantErr: errors.ErrCurrency},
		"ticker too long": {coin: NewCoinp(1, "TOOLONG"), wantErr: errors.ErrCurrency},
		"no ticker":       {coin: NewCoinp(1, ""), wantErr: errors.ErrCurrency},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.coin.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

func TestParseHumanFormat(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    Coin
		wantErr bool
	}{
		"simple":          {raw: "120 IOV", want: NewCoin(120, "IOV")},
		"extra spaces":    {raw: "  7   DOGE ", want: NewCoin(7, "DOGE")},
		"zero":            {raw: "0 ETH", want: NewCoin(0, "ETH")},
		"missing ticker":  {raw: "120", wantErr: true},
		"negative":        {raw: "-1 IOV", wantErr: true},
		"fractional":      {raw: "1.5 IOV", wantErr: true},
		"invalid ticker":  {raw: "1 iov", wantErr: true},
		"too many fields": {raw: "1 IOV ETH", wantErr: true},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseHumanFormat(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", got)
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)

			back, err := ParseHumanFormat(got.String())
			assert.Nil(t, err)
			assert.Equal(t, got, back)
		})
	}
}

func TestCoinUnmarshalJSON(t *testing.T) {
	var c Coin
	assert.Nil(t, json.Unmarshal([]byte(`"42 IOV"`), &c))
	assert.Equal(t, NewCoin(42, "IOV"), c)

	assert.Nil(t, json.Unmarshal([]byte(`{"ticker": "ETH", "amount": 3}`), &c))
	assert.Equal(t, NewCoin(3, "ETH"), c)

	if err := json.Unmarshal([]byte(`"nope"`), &c); err == nil {
		t.Fatal("want error")
	}
}

func TestCoinSetFlag(t *testing.T) {
	var c Coin
	assert.Nil(t, c.Set("9 IOV"))
	assert.Equal(t, NewCoin(9, "IOV"), c)
	if err := c.Set("nine IOV"); err == nil {
		t.Fatal("want error")
	}
	assert.Equal(t, NewCoin(9, "IOV"), c)
}

func TestCoinSerialization(t *testing.T) {
	c := NewCoin(123456789, "IOV")
	raw, err := c.Marshal()
	assert.Nil(t, err)

	var got Coin
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, c, got)
}
