// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "strconv"
    "unicode/utf8"

    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/crypto"

    "blockwatch.cc/nns-near/pkg/near"
)

// Controller is the registration front door. Registration runs commit
// then reveal: a caller first commits the hash of (label, owner,
// secret), waits at least MIN_COMMITMENT_AGE, then reveals within
// MAX_COMMITMENT_AGE. An observer of the commit learns nothing about
// the name, so it cannot be stolen while the commit confirms.
//
// The exact quoted cost is forwarded to the treasury, any excess
// deposit refunded to the caller, and both transfers abort the whole
// registration when they fail.
type Controller struct {
    env     *near.Env
    account near.AccountID
    admin   near.AccountID

    registrar *BaseRegistrar
    oracle    *PriceOracle
    resolver  *Resolver
    treasury  near.AccountID

    commitments map[common.Hash]int64
}

func NewController(env *near.Env, account, admin near.AccountID, registrar *BaseRegistrar, oracle *PriceOracle, resolver *Resolver, treasury near.AccountID) *Controller {
    if treasury == "" {
        panic("empty treasury account")
    }
    c := &Controller{
        env:         env,
        account:     account,
        admin:       admin,
        registrar:   registrar,
        oracle:      oracle,
        resolver:    resolver,
        treasury:    treasury,
        commitments: make(map[common.Hash]int64),
    }
    env.Deploy(account, c)
    return c
}

func (c *Controller) Account() near.AccountID {
    return c.account
}

func (c *Controller) Treasury() near.AccountID {
    return c.treasury
}

// Valid reports whether a label is long enough to be registered.
func (c *Controller) Valid(name string) bool {
    return utf8.RuneCountInString(name) >= MIN_NAME_LENGTH
}

func (c *Controller) Available(name string) bool {
    return c.Valid(name) && c.registrar.Available(TokenOf(name))
}

func (c *Controller) RentPrice(name string, duration int64) PriceQuote {
    return c.oracle.Price(name, c.registrar.NameExpires(TokenOf(name)), duration)
}

// MakeCommitment derives the commitment hash for a pending
// registration. Field hashes are fixed-width, so label, owner and
// secret cannot bleed into each other.
func (c *Controller) MakeCommitment(name string, owner near.AccountID, secret string) common.Hash {
    return crypto.Keccak256Hash(
        LabelHash(name).Bytes(),
        crypto.Keccak256([]byte(owner)),
        crypto.Keccak256([]byte(secret)),
    )
}

// Commit records a commitment hash. An unexpired commitment for the
// same hash may not be replaced.
func (c *Controller) Commit(hash common.Hash) {
    if ts, ok := c.commitments[hash]; ok && ts+MAX_COMMITMENT_AGE > c.env.Now() {
        panic(ErrUnexpiredCommitment{Hash: hash})
    }
    c.commitments[hash] = c.env.Now()
}

// Register reveals a committed registration: checks the commitment
// window, availability, duration and payment, consumes the commitment,
// drives the registrar and settles payment with the treasury.
func (c *Controller) Register(name string, owner near.AccountID, duration int64, secret string) {
    c.register(name, owner, duration, secret, false)
}

// RegisterWithRecord additionally bootstraps the resolver's native
// address record for the fresh name, using the controller's trusted
// write access.
func (c *Controller) RegisterWithRecord(name string, owner near.AccountID, duration int64, secret string) {
    c.register(name, owner, duration, secret, true)
}

func (c *Controller) register(name string, owner near.AccountID, duration int64, secret string, record bool) {
    hash := c.MakeCommitment(name, owner, secret)
    ts, ok := c.commitments[hash]
    if !ok {
        panic(ErrUnknownCommitment{Hash: hash})
    }
    age := c.env.Now() - ts
    if age < MIN_COMMITMENT_AGE {
        // commitment stays pending, the caller may retry later
        panic(ErrCommitmentTooNew{Hash: hash, Age: age, Min: MIN_COMMITMENT_AGE})
    }
    if age >= MAX_COMMITMENT_AGE {
        panic(ErrCommitmentTooOld{Hash: hash, Age: age, Max: MAX_COMMITMENT_AGE})
    }
    if !c.Valid(name) {
        panic(ErrNameTooShort{Name: name, Min: MIN_NAME_LENGTH})
    }
    if !c.registrar.Available(TokenOf(name)) {
        panic(ErrNameUnavailable{Name: name})
    }
    if duration < MIN_REGISTRATION_DURATION {
        panic(ErrDurationTooShort{Duration: duration, Min: MIN_REGISTRATION_DURATION})
    }
    cost := c.RentPrice(name, duration).Total()
    deposit := c.env.Deposit()
    if deposit < cost {
        panic(ErrInsufficientPayment{Required: cost, Supplied: deposit})
    }

    // all checks passed, consume the commitment and register
    delete(c.commitments, hash)
    var exp int64
    c.env.Invoke(c.account, func() {
        exp = c.registrar.Register(TokenOf(name), owner, duration)
    })
    if record {
        node := SubNode(c.registrar.BaseNode(), LabelHash(name))
        c.env.Invoke(c.account, func() {
            c.resolver.SetAccount(node, owner)
        })
    }

    caller := c.env.Caller()
    c.env.Forward(c.treasury, cost)
    if excess := deposit - cost; excess > 0 {
        c.env.Forward(caller, excess)
    }
    c.env.Emit(c.account, EvNameRegistered, map[string]string{
        "name": name, "owner": string(owner),
        "token": TokenOf(name).Hex(), "cost": strconv.FormatUint(uint64(cost), 10),
        "expires": strconv.FormatInt(exp, 10),
    })
}

// Renew extends an existing lease. No commitment is needed, renewal
// only ever benefits the current holder.
func (c *Controller) Renew(name string, duration int64) {
    cost := c.RentPrice(name, duration).Total()
    deposit := c.env.Deposit()
    if deposit < cost {
        panic(ErrInsufficientPayment{Required: cost, Supplied: deposit})
    }
    var exp int64
    c.env.Invoke(c.account, func() {
        exp = c.registrar.Renew(TokenOf(name), duration)
    })
    caller := c.env.Caller()
    c.env.Forward(c.treasury, cost)
    if excess := deposit - cost; excess > 0 {
        c.env.Forward(caller, excess)
    }
    c.env.Emit(c.account, EvNameRenewed, map[string]string{
        "name": name, "cost": strconv.FormatUint(uint64(cost), 10),
        "expires": strconv.FormatInt(exp, 10),
    })
}

func (c *Controller) onlyAdmin() {
    if c.env.Caller() != c.admin {
        panic(ErrNotAdmin{Caller: c.env.Caller()})
    }
}

func (c *Controller) SetTreasury(treasury near.AccountID) {
    c.onlyAdmin()
    if treasury == "" {
        panic("empty treasury account")
    }
    c.treasury = treasury
}

func (c *Controller) SetPriceOracle(oracle *PriceOracle) {
    c.onlyAdmin()
    c.oracle = oracle
}
