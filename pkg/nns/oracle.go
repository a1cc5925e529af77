package nns

import (
    "math"
    "unicode/utf8"

    "blockwatch.cc/nns-near/pkg/near"
)

// PriceOracle quotes rent from a per-length price table: shorter names
// cost more per year, names of five or more characters share the last
// tier. The premium slot is reserved for decaying re-registration
// premiums and is always zero for now; keeping it separate lets a
// premium schedule appear without changing callers.
type PriceOracle struct {
    env     *near.Env
    account near.AccountID
    admin   near.AccountID

    // price per year by name length, index 0 = one character
    prices [5]near.Money
}

// DefaultPrices is the launch price table in ledger units per year.
var DefaultPrices = [5]near.Money{2560, 1280, 640, 160, 5}

func NewPriceOracle(env *near.Env, account, admin near.AccountID, prices [5]near.Money) *PriceOracle {
    checkPrices(prices)
    o := &PriceOracle{
        env:     env,
        account: account,
        admin:   admin,
        prices:  prices,
    }
    env.Deploy(account, o)
    return o
}

func (o *PriceOracle) Price(name string, expires int64, duration int64) PriceQuote {
    n := utf8.RuneCountInString(name)
    if n < 1 {
        n = 1
    }
    if n > len(o.prices) {
        n = len(o.prices)
    }
    perYear := uint64(o.prices[n-1])
    // negative durations wrap to huge uint64 values and are caught here
    if perYear > 0 && uint64(duration) > math.MaxUint64/perYear {
        panic(ErrPriceOverflow{Name: name, Duration: duration})
    }
    base := near.Money(perYear * uint64(duration) / SECONDS_PER_YEAR)
    // expires will feed the premium schedule once one exists
    return PriceQuote{Base: base, Premium: 0}
}

// PricePerYear exposes the raw table entry for a name length.
func (o *PriceOracle) PricePerYear(length int) near.Money {
    if length < 1 {
        length = 1
    }
    if length > len(o.prices) {
        length = len(o.prices)
    }
    return o.prices[length-1]
}

func (o *PriceOracle) SetPrices(prices [5]near.Money) {
    if o.env.Caller() != o.admin {
        panic(ErrNotAdmin{Caller: o.env.Caller()})
    }
    checkPrices(prices)
    o.prices = prices
}

func checkPrices(prices [5]near.Money) {
    for i := 1; i < len(prices); i++ {
        if prices[i] > prices[i-1] {
            panic("price table must be non-increasing by length")
        }
    }
}
