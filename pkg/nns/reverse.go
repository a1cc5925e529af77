// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "blockwatch.cc/nns-near/pkg/near"
)

// ReverseRegistrar hands out nodes under addr.reverse so an account
// can publish the display name it wants to be known by. The reverse
// node of an account is SubNode(addr.reverse, keccak(account)).
type ReverseRegistrar struct {
    env     *near.Env
    account near.AccountID
    admin   near.AccountID

    registry        *Registry
    defaultResolver *Resolver
    controllers     map[near.AccountID]bool
}

// ReverseNamespace is the dotted name owned by the reverse registrar.
const ReverseNamespace = "addr.reverse"

func NewReverseRegistrar(env *near.Env, account, admin near.AccountID, registry *Registry, defaultResolver *Resolver) *ReverseRegistrar {
    r := &ReverseRegistrar{
        env:             env,
        account:         account,
        admin:           admin,
        registry:        registry,
        defaultResolver: defaultResolver,
        controllers:     make(map[near.AccountID]bool),
    }
    env.Deploy(account, r)
    return r
}

func (r *ReverseRegistrar) Account() near.AccountID {
    return r.account
}

// Node computes the reverse node of an account.
func (r *ReverseRegistrar) Node(addr near.AccountID) Node {
    return SubNode(NameHash(ReverseNamespace), AccountHash(string(addr)))
}

func (r *ReverseRegistrar) onlyAdmin() {
    if r.env.Caller() != r.admin {
        panic(ErrNotAdmin{Caller: r.env.Caller()})
    }
}

func (r *ReverseRegistrar) AddController(c near.AccountID) {
    r.onlyAdmin()
    r.controllers[c] = true
    r.env.Emit(r.account, EvControllerAdded, map[string]string{"controller": string(c)})
}

func (r *ReverseRegistrar) RemoveController(c near.AccountID) {
    r.onlyAdmin()
    delete(r.controllers, c)
    r.env.Emit(r.account, EvControllerRemoved, map[string]string{"controller": string(c)})
}

// authorised gates claims on addr's behalf: addr itself, an operator
// addr approved in the registry, or an allow-listed controller.
func (r *ReverseRegistrar) authorised(addr near.AccountID) {
    caller := r.env.Caller()
    if caller == addr || r.controllers[caller] || r.registry.IsApprovedForAll(addr, caller) {
        return
    }
    panic(ErrUnauthorized{Caller: caller, Node: r.Node(addr), Action: "claim"})
}

// ClaimForAddr writes {owner, resolver} into the registry for addr's
// reverse node and returns the node.
func (r *ReverseRegistrar) ClaimForAddr(addr, owner, resolver near.AccountID) Node {
    r.authorised(addr)
    var node Node
    r.env.Invoke(r.account, func() {
        node = r.registry.SetSubnodeRecord(NameHash(ReverseNamespace), AccountHash(string(addr)), owner, resolver, 0)
    })
    r.env.Emit(r.account, EvReverseClaimed, map[string]string{
        "addr": string(addr), "node": node.Hex(),
    })
    return node
}

// Claim claims the caller's own reverse node with the default
// resolver.
func (r *ReverseRegistrar) Claim(owner near.AccountID) Node {
    return r.ClaimForAddr(r.env.Caller(), owner, r.defaultResolver.Account())
}

// SetNameForAddr claims addr's reverse node and writes the display
// name into its resolver.
func (r *ReverseRegistrar) SetNameForAddr(addr, owner near.AccountID, resolverAcc near.AccountID, name string) Node {
    node := r.ClaimForAddr(addr, owner, resolverAcc)
    res := r.resolverAt(resolverAcc)
    r.env.Invoke(r.account, func() {
        res.SetName(node, name)
    })
    return node
}

// SetName claims the caller's reverse node with the default resolver
// and publishes the display name in one call.
func (r *ReverseRegistrar) SetName(name string) Node {
    caller := r.env.Caller()
    return r.SetNameForAddr(caller, caller, r.defaultResolver.Account(), name)
}

func (r *ReverseRegistrar) SetDefaultResolver(res *Resolver) {
    r.onlyAdmin()
    r.defaultResolver = res
}

func (r *ReverseRegistrar) resolverAt(acc near.AccountID) *Resolver {
    if acc == r.defaultResolver.Account() {
        return r.defaultResolver
    }
    res, ok := r.env.ContractAt(acc).(*Resolver)
    if !ok {
        panic("no resolver contract at " + string(acc))
    }
    return res
}
