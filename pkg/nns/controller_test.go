// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "blockwatch.cc/nns-near/pkg/near"
)

func TestCommitRevealWindow(t *testing.T) {
    env, s := newTestSuite()
    hash := s.Ctrl.MakeCommitment("bob", ALICE, SECRET)
    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(hash)
    })

    // too new after 30 time units
    env.Skip(30)
    env.Call(ALICE, 640, func() {
        assert.PanicsWithError(t,
            ErrCommitmentTooNew{Hash: hash, Age: 30, Min: MIN_COMMITMENT_AGE}.Error(),
            func() { s.Ctrl.Register("bob", ALICE, ONE_YEAR, SECRET) },
            "reveal before minimum age")
    })

    // the commitment survived the failed reveal
    env.Skip(31)
    env.Call(ALICE, 640, func() {
        assert.NotPanics(t, func() { s.Ctrl.Register("bob", ALICE, ONE_YEAR, SECRET) }, "reveal inside window")
    })
    assert.False(t, s.Ctrl.Available("bob"), "registered")
    assert.Equal(t, env.Now()+ONE_YEAR, s.Registrar.NameExpires(TokenOf("bob")), "one year lease")
}

func TestCommitmentTooOld(t *testing.T) {
    env, s := newTestSuite()
    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(s.Ctrl.MakeCommitment("bob", ALICE, SECRET))
    })
    env.Skip(MAX_COMMITMENT_AGE)
    env.Call(ALICE, 640, func() {
        assert.Panics(t, func() { s.Ctrl.Register("bob", ALICE, ONE_YEAR, SECRET) }, "stale commitment")
    })
    assert.True(t, s.Ctrl.Available("bob"), "still available")
}

func TestCommitmentSingleUse(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    // same (name, owner, secret) again: the consumed commitment is gone
    env.Call(ALICE, 640, func() {
        assert.PanicsWithError(t,
            ErrUnknownCommitment{Hash: s.Ctrl.MakeCommitment("bob", ALICE, SECRET)}.Error(),
            func() { s.Ctrl.Register("bob", ALICE, ONE_YEAR, SECRET) },
            "commitment consumed")
    })
}

func TestCommitDuplicate(t *testing.T) {
    env, s := newTestSuite()
    hash := s.Ctrl.MakeCommitment("bob", ALICE, SECRET)
    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(hash)
        assert.Panics(t, func() { s.Ctrl.Commit(hash) }, "unexpired duplicate")
    })
    // once expired the hash may be committed again
    env.Skip(MAX_COMMITMENT_AGE + 1)
    env.Call(ALICE, 0, func() {
        assert.NotPanics(t, func() { s.Ctrl.Commit(hash) }, "recommit after expiry")
    })
}

func TestRegisterShortName(t *testing.T) {
    env, s := newTestSuite()
    assert.False(t, s.Ctrl.Valid("ab"), "two chars invalid")
    assert.True(t, s.Ctrl.Valid("bob"), "three chars valid")
    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(s.Ctrl.MakeCommitment("ab", ALICE, SECRET))
    })
    env.Skip(MIN_COMMITMENT_AGE + 1)
    // rejected regardless of payment
    env.Call(ALICE, 1_000_000, func() {
        assert.Panics(t, func() { s.Ctrl.Register("ab", ALICE, ONE_YEAR, SECRET) }, "short name")
    })
    assert.Equal(t, near.Money(1_000_000), env.Balance(ALICE), "deposit swept back")
}

func TestRegisterMinDuration(t *testing.T) {
    env, s := newTestSuite()
    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(s.Ctrl.MakeCommitment("bob", ALICE, SECRET))
    })
    env.Skip(MIN_COMMITMENT_AGE + 1)
    env.Call(ALICE, 640, func() {
        assert.Panics(t, func() { s.Ctrl.Register("bob", ALICE, MIN_REGISTRATION_DURATION-1, SECRET) }, "below minimum duration")
    })
}

func TestRegisterHugeDuration(t *testing.T) {
    env, s := newTestSuite()
    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(s.Ctrl.MakeCommitment("bob", ALICE, SECRET))
    })
    env.Skip(MIN_COMMITMENT_AGE + 1)
    // a duration that wraps the price quote must not mint a free lease
    env.Call(ALICE, 640, func() {
        assert.Panics(t, func() { s.Ctrl.Register("bob", ALICE, 28_823_037_615_171_175, SECRET) }, "price overflow")
    })
    assert.True(t, s.Ctrl.Available("bob"), "not registered")
    assert.Equal(t, near.Money(1_000_000), env.Balance(ALICE), "nothing charged")
}

func TestRegisterPayment(t *testing.T) {
    env, s := newTestSuite()
    cost := s.Ctrl.RentPrice("bob", ONE_YEAR).Total()
    assert.Equal(t, near.Money(640), cost, "three char tier")

    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(s.Ctrl.MakeCommitment("bob", ALICE, SECRET))
    })
    env.Skip(MIN_COMMITMENT_AGE + 1)

    // underpayment aborts before any state change
    env.Call(ALICE, cost-1, func() {
        assert.PanicsWithError(t,
            ErrInsufficientPayment{Required: cost, Supplied: cost - 1}.Error(),
            func() { s.Ctrl.Register("bob", ALICE, ONE_YEAR, SECRET) },
            "underpaid")
    })
    assert.True(t, s.Ctrl.Available("bob"), "not registered")
    assert.Equal(t, near.Money(1_000_000), env.Balance(ALICE), "nothing charged")

    // overpayment charges exactly the quote
    env.Call(ALICE, cost+500, func() {
        s.Ctrl.Register("bob", ALICE, ONE_YEAR, SECRET)
    })
    assert.Equal(t, near.Money(1_000_000)-cost, env.Balance(ALICE), "exact cost charged")
    assert.Equal(t, cost, env.Balance(TREASURY), "treasury funded")
}

func TestRenewPayment(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    exp := s.Registrar.NameExpires(TokenOf("bob"))
    balance := env.Balance(BOB)

    // anyone may renew an active lease, overpayment refunded
    env.Call(BOB, 1000, func() {
        s.Ctrl.Renew("bob", ONE_YEAR)
    })
    assert.Equal(t, exp+ONE_YEAR, s.Registrar.NameExpires(TokenOf("bob")), "extended")
    assert.Equal(t, balance-640, env.Balance(BOB), "exact renewal cost")

    env.Call(BOB, 100, func() {
        assert.Panics(t, func() { s.Ctrl.Renew("bob", ONE_YEAR) }, "underpaid renewal")
    })
}

func TestRegisterMirror(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    assert.Equal(t,
        s.Registry.Owner(s.NodeOf("bob")),
        s.Registrar.OwnerOf(TokenOf("bob")),
        "registry mirrors the lease")
}

func TestRegisterWithRecord(t *testing.T) {
    env, s := newTestSuite()
    env.Call(ALICE, 0, func() {
        s.Ctrl.Commit(s.Ctrl.MakeCommitment("bob", ALICE, SECRET))
    })
    env.Skip(MIN_COMMITMENT_AGE + 1)
    env.Call(ALICE, 640, func() {
        s.Ctrl.RegisterWithRecord("bob", ALICE, ONE_YEAR, SECRET)
    })
    assert.Equal(t, near.AccountID(ALICE), s.Resolver.AccountOf(s.NodeOf("bob")), "native address bootstrapped")
}

func TestControllerRequiresTreasury(t *testing.T) {
    env, s := newTestSuite()
    // fees have nowhere to go without a treasury, refuse to deploy
    assert.Panics(t, func() {
        NewController(env, "controller2.nns", ADMIN, s.Registrar, s.Oracle, s.Resolver, "")
    }, "empty treasury")
}

func TestControllerAdmin(t *testing.T) {
    env, s := newTestSuite()
    env.Call(ALICE, 0, func() {
        assert.Panics(t, func() { s.Ctrl.SetTreasury(ALICE) }, "only admin")
    })
    env.Call(ADMIN, 0, func() {
        s.Ctrl.SetTreasury("vault.near")
    })
    assert.Equal(t, near.AccountID("vault.near"), s.Ctrl.Treasury(), "treasury updated")
}

func TestRegistrationEvent(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    ev := env.LastEvent(EvNameRegistered)
    if assert.NotNil(t, ev, "event emitted") {
        assert.Equal(t, "bob", ev.Attrs["name"], "name attr")
        assert.Equal(t, ALICE, ev.Attrs["owner"], "owner attr")
    }
}
