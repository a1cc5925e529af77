// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package near

type AccountID string

type Pubkey string

type Signature string

type Money uint64

func (m Money) Mul(n int) Money {
    return m * Money(n)
}

func (m Money) Div(n int) Money {
    return m / Money(n)
}

type Signer interface {
    Sign([]byte) []byte
}
