// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "github.com/ethereum/go-ethereum/common"

    "blockwatch.cc/nns-near/pkg/near"
)

// Registry is the canonical ownership tree: one record per node, every
// mutator gated on the node's current owner or an operator that owner
// approved for all of their nodes. The root node belongs to the
// deploying admin.
type Registry struct {
    env     *near.Env
    account near.AccountID

    records   map[Node]Record
    operators map[near.AccountID]map[near.AccountID]bool
}

func NewRegistry(env *near.Env, account, admin near.AccountID) *Registry {
    r := &Registry{
        env:       env,
        account:   account,
        records:   make(map[Node]Record),
        operators: make(map[near.AccountID]map[near.AccountID]bool),
    }
    r.records[RootNode] = Record{Owner: admin}
    env.Deploy(account, r)
    return r
}

func (r *Registry) Account() near.AccountID {
    return r.account
}

func (r *Registry) authorised(node Node, action string) {
    owner := r.records[node].Owner
    caller := r.env.Caller()
    if caller == owner {
        return
    }
    if r.operators[owner][caller] {
        return
    }
    panic(ErrUnauthorized{Caller: caller, Node: node, Action: action})
}

func (r *Registry) SetOwner(node Node, owner near.AccountID) {
    r.authorised(node, "setOwner")
    rec := r.records[node]
    rec.Owner = owner
    r.records[node] = rec
    r.env.Emit(r.account, EvTransfer, map[string]string{
        "node": node.Hex(), "owner": string(owner),
    })
}

func (r *Registry) SetSubnodeOwner(node Node, label common.Hash, owner near.AccountID) Node {
    r.authorised(node, "setSubnodeOwner")
    sub := SubNode(node, label)
    rec := r.records[sub]
    rec.Owner = owner
    r.records[sub] = rec
    r.env.Emit(r.account, EvNewOwner, map[string]string{
        "node": node.Hex(), "label": label.Hex(), "owner": string(owner),
    })
    return sub
}

func (r *Registry) SetResolver(node Node, resolver near.AccountID) {
    r.authorised(node, "setResolver")
    rec := r.records[node]
    rec.Resolver = resolver
    r.records[node] = rec
    r.env.Emit(r.account, EvNewResolver, map[string]string{
        "node": node.Hex(), "resolver": string(resolver),
    })
}

func (r *Registry) SetTTL(node Node, ttl uint64) {
    r.authorised(node, "setTTL")
    rec := r.records[node]
    rec.TTL = ttl
    r.records[node] = rec
    r.env.Emit(r.account, EvNewTTL, map[string]string{"node": node.Hex()})
}

// SetRecord writes owner, resolver and ttl in one call.
func (r *Registry) SetRecord(node Node, owner, resolver near.AccountID, ttl uint64) {
    r.SetOwner(node, owner)
    // after the owner change the caller may no longer be authorised,
    // resolver and ttl are written on the node's behalf
    r.setResolverAndTTL(node, resolver, ttl)
}

func (r *Registry) SetSubnodeRecord(node Node, label common.Hash, owner, resolver near.AccountID, ttl uint64) Node {
    sub := r.SetSubnodeOwner(node, label, owner)
    r.setResolverAndTTL(sub, resolver, ttl)
    return sub
}

func (r *Registry) setResolverAndTTL(node Node, resolver near.AccountID, ttl uint64) {
    rec := r.records[node]
    if rec.Resolver != resolver {
        rec.Resolver = resolver
        r.env.Emit(r.account, EvNewResolver, map[string]string{
            "node": node.Hex(), "resolver": string(resolver),
        })
    }
    if rec.TTL != ttl {
        rec.TTL = ttl
        r.env.Emit(r.account, EvNewTTL, map[string]string{"node": node.Hex()})
    }
    r.records[node] = rec
}

func (r *Registry) SetApprovalForAll(operator near.AccountID, approved bool) {
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

// Owner returns the empty account both for nodes that were never
// created and for nodes owned by the registry account itself (the
// "unowned but reachable" sentinel).
func (r *Registry) Owner(node Node) near.AccountID {
    owner := r.records[node].Owner
    if owner == r.account {
        return ""
    }
    return owner
}

func (r *Registry) Resolver(node Node) near.AccountID {
    return r.records[node].Resolver
}

func (r *Registry) TTL(node Node) uint64 {
    return r.records[node].TTL
}

func (r *Registry) RecordExists(node Node) bool {
    return r.records[node].Owner != ""
}

func (r *Registry) IsApprovedForAll(owner, operator near.AccountID) bool {
    return r.operators[owner][operator]
}
