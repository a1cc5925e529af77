// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "strconv"

    cid "github.com/ipfs/go-cid"

    "blockwatch.cc/nns-near/pkg/near"
)

// Resolver stores the resolution records for a node: addresses by coin
// type, free-text key/value pairs, one content pointer (a CID) and a
// display name. Every record key carries the node's current version;
// ClearRecords bumps the version, which orphans all prior records in
// O(1) without deleting them.
//
// Writes require authorization against the node's current registry
// owner: the owner itself, an operator approved for all of the owner's
// nodes, a delegate approved for this node, or one of the trusted
// system callers (registration controller, reverse registrar).
type Resolver struct {
    env     *near.Env
    account near.AccountID

    registry *Registry
    trusted  map[near.AccountID]bool

    versions  map[Node]uint64
    addrs     map[recordKey]map[uint32][]byte
    texts     map[recordKey]map[string]string
    hashes    map[recordKey][]byte
    names     map[recordKey]string
    operators map[near.AccountID]map[near.AccountID]bool
    delegates map[near.AccountID]map[Node]map[near.AccountID]bool
}

type recordKey struct {
    node    Node
    version uint64
}

// RecordKind tags an entry of a batched record update.
type RecordKind byte

const (
    AddrRecord RecordKind = iota
    TextRecord
    ContenthashRecord
    NameRecord
)

// RecordUpdate is one write in a Multicall batch.
type RecordUpdate struct {
    Kind     RecordKind
    Node     Node
    CoinType uint32 // AddrRecord
    Key      string // TextRecord
    Value    []byte // AddrRecord, ContenthashRecord
    Text     string // TextRecord, NameRecord
}

func NewResolver(env *near.Env, account near.AccountID, registry *Registry, trusted ...near.AccountID) *Resolver {
    r := &Resolver{
        env:       env,
        account:   account,
        registry:  registry,
        trusted:   make(map[near.AccountID]bool),
        versions:  make(map[Node]uint64),
        addrs:     make(map[recordKey]map[uint32][]byte),
        texts:     make(map[recordKey]map[string]string),
        hashes:    make(map[recordKey][]byte),
        names:     make(map[recordKey]string),
        operators: make(map[near.AccountID]map[near.AccountID]bool),
        delegates: make(map[near.AccountID]map[Node]map[near.AccountID]bool),
    }
    for _, t := range trusted {
        r.trusted[t] = true
    }
    env.Deploy(account, r)
    return r
}

func (r *Resolver) Account() near.AccountID {
    return r.account
}

// Trust adds a trusted system caller. Only the registry's root owner
// may extend the trust set after deployment.
func (r *Resolver) Trust(acc near.AccountID) {
    if r.env.Caller() != r.registry.Owner(RootNode) {
        panic(ErrNotAdmin{Caller: r.env.Caller()})
    }
    r.trusted[acc] = true
}

func (r *Resolver) IsAuthorised(node Node) bool {
    caller := r.env.Caller()
    if r.trusted[caller] {
        return true
    }
    owner := r.registry.Owner(node)
    if caller == owner {
        return true
    }
    if r.operators[owner][caller] {
        return true
    }
    return r.delegates[owner][node][caller]
}

func (r *Resolver) authorised(node Node, action string) {
    if !r.IsAuthorised(node) {
        panic(ErrUnauthorized{Caller: r.env.Caller(), Node: node, Action: action})
    }
}

func (r *Resolver) key(node Node) recordKey {
    return recordKey{node: node, version: r.versions[node]}
}

func (r *Resolver) SetApprovalForAll(operator near.AccountID, approved bool) {
    caller := r.env.Caller()
    if r.operators[caller] == nil {
        r.operators[caller] = make(map[near.AccountID]bool)
    }
    if approved {
        r.operators[caller][operator] = true
    } else {
        delete(r.operators[caller], operator)
    }
}

func (r *Resolver) IsApprovedForAll(owner, operator near.AccountID) bool {
    return r.operators[owner][operator]
}

// Approve grants or revokes a delegate for a single node the caller
// owns.
func (r *Resolver) Approve(node Node, delegate near.AccountID, approved bool) {
    caller := r.env.Caller()
    if r.delegates[caller] == nil {
        r.delegates[caller] = make(map[Node]map[near.AccountID]bool)
    }
    if r.delegates[caller][node] == nil {
        r.delegates[caller][node] = make(map[near.AccountID]bool)
    }
    if approved {
        r.delegates[caller][node][delegate] = true
    } else {
        delete(r.delegates[caller][node], delegate)
    }
}

func (r *Resolver) IsApprovedFor(owner near.AccountID, node Node, delegate near.AccountID) bool {
    return r.delegates[owner][node][delegate]
}

func (r *Resolver) SetAddr(node Node, coinType uint32, addr []byte) {
    r.authorised(node, "setAddr")
    k := r.key(node)
    if r.addrs[k] == nil {
        r.addrs[k] = make(map[uint32][]byte)
    }
    r.addrs[k][coinType] = append([]byte(nil), addr...)
    r.env.Emit(r.account, EvAddrChanged, map[string]string{
        "node": node.Hex(), "cointype": strconv.FormatUint(uint64(coinType), 10),
    })
}

func (r *Resolver) Addr(node Node, coinType uint32) []byte {
    return r.addrs[r.key(node)][coinType]
}

// SetAccount stores the ledger-native account id under the native coin
// type.
func (r *Resolver) SetAccount(node Node, acc near.AccountID) {
    r.SetAddr(node, COIN_TYPE_NATIVE, []byte(acc))
}

func (r *Resolver) AccountOf(node Node) near.AccountID {
    return near.AccountID(r.Addr(node, COIN_TYPE_NATIVE))
}

func (r *Resolver) SetText(node Node, key, value string) {
    r.authorised(node, "setText")
    k := r.key(node)
    if r.texts[k] == nil {
        r.texts[k] = make(map[string]string)
    }
    r.texts[k][key] = value
    r.env.Emit(r.account, EvTextChanged, map[string]string{
        "node": node.Hex(), "key": key,
    })
}

func (r *Resolver) Text(node Node, key string) string {
    return r.texts[r.key(node)][key]
}

// SetContenthash stores the content pointer, which must parse as a
// CID.
func (r *Resolver) SetContenthash(node Node, hash []byte) {
    r.authorised(node, "setContenthash")
    if len(hash) > 0 {
        if _, err := cid.Cast(hash); err != nil {
            panic(ErrBadContenthash{Reason: err.Error()})
        }
    }
    r.hashes[r.key(node)] = append([]byte(nil), hash...)
    r.env.Emit(r.account, EvContenthashChanged, map[string]string{"node": node.Hex()})
}

func (r *Resolver) Contenthash(node Node) []byte {
    return r.hashes[r.key(node)]
}

func (r *Resolver) SetName(node Node, name string) {
    r.authorised(node, "setName")
    r.names[r.key(node)] = name
    r.env.Emit(r.account, EvNameChanged, map[string]string{
        "node": node.Hex(), "name": name,
    })
}

func (r *Resolver) Name(node Node) string {
    return r.names[r.key(node)]
}

// ClearRecords logically wipes every record of a node by bumping its
// version. Old entries stay in storage but become unreachable.
func (r *Resolver) ClearRecords(node Node) {
    r.authorised(node, "clearRecords")
    r.versions[node]++
    r.env.Emit(r.account, EvVersionChanged, map[string]string{
        "node": node.Hex(), "version": strconv.FormatUint(r.versions[node], 10),
    })
}

// Multicall applies a batch of record updates; each entry is
// authorized on its own node.
func (r *Resolver) Multicall(updates []RecordUpdate) {
    for _, u := range updates {
        r.apply(u)
    }
}

// MulticallWithNodeCheck additionally requires every entry to target
// the one node the caller claims authorization for.
func (r *Resolver) MulticallWithNodeCheck(node Node, updates []RecordUpdate) {
    for _, u := range updates {
        if u.Node != node {
            panic(ErrNodeMismatch{Want: node, Got: u.Node})
        }
    }
    r.Multicall(updates)
}

func (r *Resolver) apply(u RecordUpdate) {
    switch u.Kind {
    case AddrRecord:
        r.SetAddr(u.Node, u.CoinType, u.Value)
    case TextRecord:
        r.SetText(u.Node, u.Key, u.Text)
    case ContenthashRecord:
        r.SetContenthash(u.Node, u.Value)
    case NameRecord:
        r.SetName(u.Node, u.Text)
    default:
        panic("unknown record kind")
    }
}
