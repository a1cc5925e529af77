// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "fmt"

    "github.com/ethereum/go-ethereum/common"

    "blockwatch.cc/nns-near/pkg/near"
)

// Contracts revert by panicking with one of the typed reasons below so
// a caller can tell which precondition failed and with which
// identifiers.

type ErrUnauthorized struct {
    Caller near.AccountID
    Node   Node
    Action string
}

func (e ErrUnauthorized) Error() string {
    return fmt.Sprintf("%s: caller %s not authorized on node %s", e.Action, e.Caller, e.Node.Hex())
}

type ErrNotController struct {
    Caller near.AccountID
}

func (e ErrNotController) Error() string {
    return fmt.Sprintf("caller %s is not an allow-listed controller", e.Caller)
}

type ErrNotAdmin struct {
    Caller near.AccountID
}

func (e ErrNotAdmin) Error() string {
    return fmt.Sprintf("caller %s is not the contract admin", e.Caller)
}

type ErrNameUnavailable struct {
    Name string
}

func (e ErrNameUnavailable) Error() string {
    return fmt.Sprintf("name %q is not available", e.Name)
}

type ErrNameTooShort struct {
    Name string
    Min  int
}

func (e ErrNameTooShort) Error() string {
    return fmt.Sprintf("name %q below minimum length %d", e.Name, e.Min)
}

type ErrUnknownCommitment struct {
    Hash common.Hash
}

func (e ErrUnknownCommitment) Error() string {
    return fmt.Sprintf("no pending commitment %s", e.Hash.Hex())
}

type ErrCommitmentTooNew struct {
    Hash common.Hash
    Age  int64
    Min  int64
}

func (e ErrCommitmentTooNew) Error() string {
    return fmt.Sprintf("commitment %s too new: age %ds < %ds", e.Hash.Hex(), e.Age, e.Min)
}

type ErrCommitmentTooOld struct {
    Hash common.Hash
    Age  int64
    Max  int64
}

func (e ErrCommitmentTooOld) Error() string {
    return fmt.Sprintf("commitment %s too old: age %ds >= %ds", e.Hash.Hex(), e.Age, e.Max)
}

type ErrUnexpiredCommitment struct {
    Hash common.Hash
}

func (e ErrUnexpiredCommitment) Error() string {
    return fmt.Sprintf("unexpired commitment %s already pending", e.Hash.Hex())
}

type ErrInsufficientPayment struct {
    Required near.Money
    Supplied near.Money
}

func (e ErrInsufficientPayment) Error() string {
    return fmt.Sprintf("insufficient payment: required %d, supplied %d", e.Required, e.Supplied)
}

type ErrDurationTooShort struct {
    Duration int64
    Min      int64
}

func (e ErrDurationTooShort) Error() string {
    return fmt.Sprintf("duration %ds below minimum %ds", e.Duration, e.Min)
}

type ErrPriceOverflow struct {
    Name     string
    Duration int64
}

func (e ErrPriceOverflow) Error() string {
    return fmt.Sprintf("duration %ds overflows the price for name %q", e.Duration, e.Name)
}

type ErrExpiryOverflow struct {
    ID TokenID
}

func (e ErrExpiryOverflow) Error() string {
    return fmt.Sprintf("duration overflows expiry for token %s", e.ID.Hex())
}

type ErrExpiredLease struct {
    ID TokenID
}

func (e ErrExpiredLease) Error() string {
    return fmt.Sprintf("lease %s is expired", e.ID.Hex())
}

type ErrBadContenthash struct {
    Reason string
}

func (e ErrBadContenthash) Error() string {
    return fmt.Sprintf("contenthash is not a valid cid: %s", e.Reason)
}

type ErrNoAddress struct {
    Name string
}

func (e ErrNoAddress) Error() string {
    return fmt.Sprintf("name %q does not resolve to an account", e.Name)
}

type ErrNodeMismatch struct {
    Want Node
    Got  Node
}

func (e ErrNodeMismatch) Error() string {
    return fmt.Sprintf("batched call targets node %s, authorized for %s", e.Got.Hex(), e.Want.Hex())
}
