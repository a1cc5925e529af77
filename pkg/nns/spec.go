// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "github.com/ethereum/go-ethereum/common"

    "blockwatch.cc/nns-near/pkg/near"
)

const (
    // window after expiry in which only the old lease holder may renew
    GRACE_PERIOD = 90 * 24 * 3600

    // commit/reveal window
    MIN_COMMITMENT_AGE = 60
    MAX_COMMITMENT_AGE = 24 * 3600

    MIN_REGISTRATION_DURATION = 28 * 24 * 3600
    MIN_NAME_LENGTH           = 3

    SECONDS_PER_YEAR = 365 * 24 * 3600

    // SLIP-44 coin type storing the ledger's native account id form
    COIN_TYPE_NATIVE = 60
)

// Node identifies a position in the naming hierarchy, derived from the
// parent node and a label hash (see namehash.go). The root node is the
// zero hash.
type Node common.Hash

var RootNode = Node{}

func (n Node) Hex() string {
    return common.Hash(n).Hex()
}

// TokenID identifies a lease in the BaseRegistrar: the hash of the
// label directly under the registrar's base node.
type TokenID common.Hash

func (t TokenID) Hex() string {
    return common.Hash(t).Hex()
}

// Record is the registry state per node.
type Record struct {
    Owner    near.AccountID
    Resolver near.AccountID
    TTL      uint64
}

// PriceQuote is returned by the price oracle. Base covers the plain
// rent, Premium is reserved for decaying re-registration premiums and
// is currently always zero; callers must pay Base+Premium.
type PriceQuote struct {
    Base    near.Money
    Premium near.Money
}

func (q PriceQuote) Total() near.Money {
    return q.Base + q.Premium
}

// Event kinds emitted into the ledger feed.
const (
    EvNewOwner           = "new_owner"
    EvTransfer           = "transfer"
    EvNewResolver        = "new_resolver"
    EvNewTTL             = "new_ttl"
    EvNameRegistered     = "name_registered"
    EvNameRenewed        = "name_renewed"
    EvNameTransferred    = "name_transferred"
    EvControllerAdded    = "controller_added"
    EvControllerRemoved  = "controller_removed"
    EvAddrChanged        = "addr_changed"
    EvTextChanged        = "text_changed"
    EvContenthashChanged = "contenthash_changed"
    EvNameChanged        = "name_changed"
    EvVersionChanged     = "version_changed"
    EvReverseClaimed     = "reverse_claimed"
    EvPaymentForwarded   = "payment_forwarded"
)

// Ownership is the registry surface used by all other contracts.
type Ownership interface {
    // Writes, gated on node owner or an approved operator
    SetOwner(node Node, owner near.AccountID)
    SetSubnodeOwner(node Node, label common.Hash, owner near.AccountID) Node
    SetResolver(node Node, resolver near.AccountID)
    SetTTL(node Node, ttl uint64)
    SetRecord(node Node, owner, resolver near.AccountID, ttl uint64)
    SetSubnodeRecord(node Node, label common.Hash, owner, resolver near.AccountID, ttl uint64) Node
    SetApprovalForAll(operator near.AccountID, approved bool)

    // Reads
    Owner(node Node) near.AccountID
    Resolver(node Node) near.AccountID
    TTL(node Node) uint64
    RecordExists(node Node) bool
    IsApprovedForAll(owner, operator near.AccountID) bool
}

// Leasing is the registrar surface driven by registration controllers.
type Leasing interface {
    // Called by: allow-listed controller
    Register(id TokenID, owner near.AccountID, duration int64) int64
    Renew(id TokenID, duration int64) int64

    // Called by: lease holder
    Reclaim(id TokenID, owner near.AccountID)
    Transfer(id TokenID, to near.AccountID)

    // Reads
    Available(id TokenID) bool
    OwnerOf(id TokenID) near.AccountID
    NameExpires(id TokenID) int64
}

// Pricing quotes the cost of a registration or renewal.
type Pricing interface {
    Price(name string, expires int64, duration int64) PriceQuote
}

// Registration is the public commit/reveal front door.
type Registration interface {
    // Called by: anyone
    MakeCommitment(name string, owner near.AccountID, secret string) common.Hash
    Commit(hash common.Hash)
    Register(name string, owner near.AccountID, duration int64, secret string)
    Renew(name string, duration int64)

    // Reads
    Valid(name string) bool
    Available(name string) bool
    RentPrice(name string, duration int64) PriceQuote
}
