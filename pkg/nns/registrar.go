// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "math"
    "strconv"

    "github.com/ethereum/go-ethereum/common"

    "blockwatch.cc/nns-near/pkg/near"
)

// BaseRegistrar owns one top-level namespace in the registry and
// issues transferable, expiring leases for the labels directly below
// it. Per token the lifecycle is
//
//   Unregistered -> Active -> Grace -> Unregistered
//
// where Grace starts when the expiry passes and ends GRACE_PERIOD
// later. Only allow-listed controllers may register or renew; the
// lease table here is authoritative, the registry subnode is a mirror
// that Reclaim re-syncs.
type BaseRegistrar struct {
    env     *near.Env
    account near.AccountID
    admin   near.AccountID

    registry *Registry
    baseNode Node

    expiries    map[TokenID]int64
    holders     map[TokenID]near.AccountID
    controllers map[near.AccountID]bool
}

func NewBaseRegistrar(env *near.Env, account, admin near.AccountID, registry *Registry, baseNode Node) *BaseRegistrar {
    b := &BaseRegistrar{
        env:         env,
        account:     account,
        admin:       admin,
        registry:    registry,
        baseNode:    baseNode,
        expiries:    make(map[TokenID]int64),
        holders:     make(map[TokenID]near.AccountID),
        controllers: make(map[near.AccountID]bool),
    }
    env.Deploy(account, b)
    return b
}

func (b *BaseRegistrar) Account() near.AccountID {
    return b.account
}

func (b *BaseRegistrar) BaseNode() Node {
    return b.baseNode
}

func (b *BaseRegistrar) onlyAdmin() {
    if b.env.Caller() != b.admin {
        panic(ErrNotAdmin{Caller: b.env.Caller()})
    }
}

func (b *BaseRegistrar) onlyController() {
    if !b.controllers[b.env.Caller()] {
        panic(ErrNotController{Caller: b.env.Caller()})
    }
}

func (b *BaseRegistrar) AddController(c near.AccountID) {
    b.onlyAdmin()
    b.controllers[c] = true
    b.env.Emit(b.account, EvControllerAdded, map[string]string{"controller": string(c)})
}

func (b *BaseRegistrar) RemoveController(c near.AccountID) {
    b.onlyAdmin()
    delete(b.controllers, c)
    b.env.Emit(b.account, EvControllerRemoved, map[string]string{"controller": string(c)})
}

func (b *BaseRegistrar) IsController(c near.AccountID) bool {
    return b.controllers[c]
}

// Available reports whether the token can be (re-)registered: no lease
// exists or expiry plus grace period has passed.
func (b *BaseRegistrar) Available(id TokenID) bool {
    exp, ok := b.expiries[id]
    return !ok || exp+GRACE_PERIOD < b.env.Now()
}

// OwnerOf returns the current lease holder; expired leases (grace
// included) have no owner.
func (b *BaseRegistrar) OwnerOf(id TokenID) near.AccountID {
    exp, ok := b.expiries[id]
    if !ok || exp < b.env.Now() {
        panic(ErrExpiredLease{ID: id})
    }
    return b.holders[id]
}

// NameExpires returns the lease expiry, zero if none was ever issued.
func (b *BaseRegistrar) NameExpires(id TokenID) int64 {
    return b.expiries[id]
}

// Register creates a lease, silently superseding any stale one, and
// mirrors ownership into the registry subnode. Returns the new expiry.
func (b *BaseRegistrar) Register(id TokenID, owner near.AccountID, duration int64) int64 {
    b.onlyController()
    if !b.Available(id) {
        panic(ErrNameUnavailable{Name: id.Hex()})
    }
    now := b.env.Now()
    if duration <= 0 || now > math.MaxInt64-duration-GRACE_PERIOD {
        panic(ErrExpiryOverflow{ID: id})
    }
    exp := now + duration
    b.expiries[id] = exp
    b.holders[id] = owner
    b.env.Invoke(b.account, func() {
        b.registry.SetSubnodeOwner(b.baseNode, common.Hash(id), owner)
    })
    b.env.Emit(b.account, EvNameRegistered, map[string]string{
        "id": id.Hex(), "owner": string(owner), "expires": strconv.FormatInt(exp, 10),
    })
    return exp
}

// Renew extends an unexpired or in-grace lease. Returns the new
// expiry. During the grace period only the holder itself may renew, so
// the transaction signer is checked against the lease.
func (b *BaseRegistrar) Renew(id TokenID, duration int64) int64 {
    b.onlyController()
    exp, ok := b.expiries[id]
    if !ok || exp+GRACE_PERIOD < b.env.Now() {
        panic(ErrExpiredLease{ID: id})
    }
    if exp < b.env.Now() && b.env.Origin() != b.holders[id] {
        panic(ErrUnauthorized{Caller: b.env.Origin(), Node: Node(id), Action: "graceRenew"})
    }
    if duration <= 0 || exp > math.MaxInt64-duration-GRACE_PERIOD {
        panic(ErrExpiryOverflow{ID: id})
    }
    exp += duration
    b.expiries[id] = exp
    b.env.Emit(b.account, EvNameRenewed, map[string]string{
        "id": id.Hex(), "expires": strconv.FormatInt(exp, 10),
    })
    return exp
}

// Reclaim forces the registry subnode owner back in sync with the
// lease without touching the expiry. Only the holder of an active
// lease may call it.
func (b *BaseRegistrar) Reclaim(id TokenID, owner near.AccountID) {
    b.requireHolder(id)
    b.env.Invoke(b.account, func() {
        b.registry.SetSubnodeOwner(b.baseNode, common.Hash(id), owner)
    })
}

// Transfer hands the lease to another account. Grace-period and
// expired leases are not transferable. The registry mirror is left
// untouched; the new holder runs Reclaim when it wants the mirror.
func (b *BaseRegistrar) Transfer(id TokenID, to near.AccountID) {
    b.requireHolder(id)
    if to == "" {
        panic("transfer to empty account")
    }
    b.holders[id] = to
    b.env.Emit(b.account, EvNameTransferred, map[string]string{
        "id": id.Hex(), "from": string(b.env.Caller()), "to": string(to),
    })
}

func (b *BaseRegistrar) requireHolder(id TokenID) {
    exp, ok := b.expiries[id]
    if !ok || exp < b.env.Now() {
        panic(ErrExpiredLease{ID: id})
    }
    if b.holders[id] != b.env.Caller() {
        panic(ErrUnauthorized{Caller: b.env.Caller(), Node: Node(id), Action: "lease"})
    }
}
