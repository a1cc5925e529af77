// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "blockwatch.cc/nns-near/pkg/near"
)

// Suite is a fully wired deployment of the naming system on one
// ledger.
type Suite struct {
    Admin     near.AccountID
    TLD       string
    Registry  *Registry
    Registrar *BaseRegistrar
    Oracle    *PriceOracle
    Resolver  *Resolver
    Ctrl      *Controller
    Reverse   *ReverseRegistrar
    Forwarder *PaymentForwarder
}

// Deploy wires the whole contract suite under one top-level namespace:
// the registrar owns <tld>, the reverse registrar owns addr.reverse,
// the resolver trusts controller and reverse registrar, and the
// controller is allow-listed on both registrars.
func Deploy(env *near.Env, admin near.AccountID, tld string, treasury near.AccountID) *Suite {
    s := &Suite{Admin: admin, TLD: tld}

    s.Registry = NewRegistry(env, "registry.nns", admin)
    s.Registrar = NewBaseRegistrar(env, "registrar.nns", admin, s.Registry, NameHash(tld))
    s.Oracle = NewPriceOracle(env, "oracle.nns", admin, DefaultPrices)
    s.Resolver = NewResolver(env, "resolver.nns", s.Registry, "controller.nns", "reverse.nns")
    s.Ctrl = NewController(env, "controller.nns", admin, s.Registrar, s.Oracle, s.Resolver, treasury)
    s.Reverse = NewReverseRegistrar(env, "reverse.nns", admin, s.Registry, s.Resolver)
    s.Forwarder = NewPaymentForwarder(env, "forwarder.nns", admin, s.Registry, s.Resolver)

    env.Call(admin, 0, func() {
        // hand the tld to the registrar
        s.Registry.SetSubnodeOwner(RootNode, LabelHash(tld), s.Registrar.Account())

        // build the reverse namespace and hand addr.reverse to the
        // reverse registrar
        s.Registry.SetSubnodeOwner(RootNode, LabelHash("reverse"), admin)
        s.Registry.SetSubnodeOwner(NameHash("reverse"), LabelHash("addr"), s.Reverse.Account())

        s.Registrar.AddController(s.Ctrl.Account())
        s.Reverse.AddController(s.Ctrl.Account())
    })
    return s
}

// NodeOf maps a leaf label onto its node under the suite's namespace.
func (s *Suite) NodeOf(label string) Node {
    return SubNode(s.Registrar.BaseNode(), LabelHash(label))
}

// FullName joins a leaf label with the suite's namespace.
func (s *Suite) FullName(label string) string {
    return label + "." + s.TLD
}
