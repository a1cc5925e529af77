// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "math"
    "testing"

    "github.com/stretchr/testify/assert"

    "blockwatch.cc/nns-near/pkg/near"
)

func TestRegistrarOnlyController(t *testing.T) {
    env, s := newTestSuite()
    env.Call(ALICE, 0, func() {
        assert.Panics(t, func() { s.Registrar.Register(TokenOf("bob"), ALICE, ONE_YEAR) }, "direct register")
        assert.Panics(t, func() { s.Registrar.Renew(TokenOf("bob"), ONE_YEAR) }, "direct renew")
    })
    assert.True(t, s.Registrar.IsController(s.Ctrl.Account()), "controller allow-listed")
    env.Call(ALICE, 0, func() {
        assert.Panics(t, func() { s.Registrar.AddController(ALICE) }, "only admin manages controllers")
    })
}

func TestRegistrarLifecycle(t *testing.T) {
    env, s := newTestSuite()
    id := TokenOf("bob")
    assert.True(t, s.Registrar.Available(id), "unregistered is available")
    assert.Zero(t, s.Registrar.NameExpires(id), "no expiry yet")

    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    exp := s.Registrar.NameExpires(id)
    assert.Equal(t, env.Now()+ONE_YEAR, exp, "expiry one year out")
    assert.False(t, s.Registrar.Available(id), "active not available")
    assert.Equal(t, near.AccountID(ALICE), s.Registrar.OwnerOf(id), "alice holds the lease")

    // registry mirror matches the lease
    assert.Equal(t, s.Registrar.OwnerOf(id), s.Registry.Owner(s.NodeOf("bob")), "mirror in sync")

    // into grace: no owner, still not available
    env.Skip(ONE_YEAR + 1)
    assert.Panics(t, func() { s.Registrar.OwnerOf(id) }, "no owner in grace")
    assert.False(t, s.Registrar.Available(id), "grace not available")

    // past grace: available again
    env.Skip(GRACE_PERIOD)
    assert.True(t, s.Registrar.Available(id), "available after grace")
}

func TestRegistrarGraceRenewal(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    exp := s.Registrar.NameExpires(TokenOf("bob"))

    env.Skip(ONE_YEAR + 24*3600) // one day into grace

    // a third party cannot renew someone's grace lease
    env.Call(BOB, 700, func() {
        assert.Panics(t, func() { s.Ctrl.Renew("bob", ONE_YEAR) }, "grace renew by stranger")
    })

    // the holder can
    env.Call(ALICE, 700, func() {
        s.Ctrl.Renew("bob", ONE_YEAR)
    })
    assert.Equal(t, exp+ONE_YEAR, s.Registrar.NameExpires(TokenOf("bob")), "expiry extended from old expiry")
    assert.False(t, s.Registrar.Available(TokenOf("bob")), "active again")

    // after grace runs out renewal is gone for good
    env.Skip(ONE_YEAR + GRACE_PERIOD + 1)
    env.Call(ALICE, 700, func() {
        assert.Panics(t, func() { s.Ctrl.Renew("bob", ONE_YEAR) }, "fully expired")
    })
}

func TestRegistrarRenewOverflow(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    env.Call(ADMIN, 0, func() {
        s.Registrar.AddController(ADMIN)
    })
    env.Call(ADMIN, 0, func() {
        assert.Panics(t, func() { s.Registrar.Renew(TokenOf("bob"), math.MaxInt64) }, "expiry overflow")
        assert.Panics(t, func() { s.Registrar.Renew(TokenOf("bob"), 0) }, "zero duration")
    })
}

func TestRegistrarTransferAndReclaim(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    id := TokenOf("bob")
    node := s.NodeOf("bob")

    env.Call(BOB, 0, func() {
        assert.Panics(t, func() { s.Registrar.Transfer(id, BOB) }, "only holder transfers")
    })
    env.Call(ALICE, 0, func() {
        s.Registrar.Transfer(id, BOB)
    })
    assert.Equal(t, near.AccountID(BOB), s.Registrar.OwnerOf(id), "bob holds the lease")

    // the registry mirror diverged and reclaim resyncs it
    assert.Equal(t, near.AccountID(ALICE), s.Registry.Owner(node), "mirror stale after transfer")
    env.Call(ALICE, 0, func() {
        assert.Panics(t, func() { s.Registrar.Reclaim(id, ALICE) }, "old holder cannot reclaim")
    })
    env.Call(BOB, 0, func() {
        s.Registrar.Reclaim(id, BOB)
    })
    assert.Equal(t, near.AccountID(BOB), s.Registry.Owner(node), "mirror resynced")
    assert.Equal(t, env.Now()+ONE_YEAR, s.Registrar.NameExpires(id), "reclaim leaves expiry alone")

    // leases are frozen during grace
    env.Skip(ONE_YEAR + 1)
    env.Call(BOB, 0, func() {
        assert.Panics(t, func() { s.Registrar.Transfer(id, CAROL) }, "no transfer in grace")
        assert.Panics(t, func() { s.Registrar.Reclaim(id, BOB) }, "no reclaim in grace")
    })
}

func TestRegistrarReRegistrationSupersedes(t *testing.T) {
    env, s := newTestSuite()
    mustRegister(t, env, s, ALICE, "bob", ALICE, ONE_YEAR, 640)
    env.Skip(ONE_YEAR + GRACE_PERIOD + 1)
    assert.True(t, s.Registrar.Available(TokenOf("bob")), "available after grace")

    mustRegister(t, env, s, CAROL, "bob", CAROL, ONE_YEAR, 640)
    assert.Equal(t, near.AccountID(CAROL), s.Registrar.OwnerOf(TokenOf("bob")), "stale lease superseded")
    assert.Equal(t, near.AccountID(CAROL), s.Registry.Owner(s.NodeOf("bob")), "mirror follows")
}
