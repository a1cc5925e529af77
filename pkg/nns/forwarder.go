// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "strconv"

    "blockwatch.cc/nns-near/pkg/near"
)

// PaymentForwarder pays whoever currently owns a name: it resolves the
// name's native address record through the registry's resolver
// reference (falling back to a default resolver) and forwards the
// whole attached deposit there. Nothing is retained on failure, the
// call reverts as a whole.
type PaymentForwarder struct {
    env     *near.Env
    account near.AccountID
    admin   near.AccountID

    registry        *Registry
    defaultResolver *Resolver
}

func NewPaymentForwarder(env *near.Env, account, admin near.AccountID, registry *Registry, defaultResolver *Resolver) *PaymentForwarder {
    f := &PaymentForwarder{
        env:             env,
        account:         account,
        admin:           admin,
        registry:        registry,
        defaultResolver: defaultResolver,
    }
    env.Deploy(account, f)
    return f
}

// ResolveAddress resolves a dotted name to the account its resolver
// publishes under the native coin type. Panics with ErrNoAddress when
// the name has no resolvable account.
func (f *PaymentForwarder) ResolveAddress(name string) near.AccountID {
    node := NameHash(name)
    res := f.defaultResolver
    if acc := f.registry.Resolver(node); acc != "" {
        if r, ok := f.env.ContractAt(acc).(*Resolver); ok {
            res = r
        }
    }
    to := res.AccountOf(node)
    if to == "" {
        panic(ErrNoAddress{Name: name})
    }
    return to
}

// SendPayment forwards the attached deposit to the name's account.
func (f *PaymentForwarder) SendPayment(name string) {
    to := f.ResolveAddress(name)
    amount := f.env.Deposit()
    if amount == 0 {
        panic("no payment attached")
    }
    from := f.env.Caller()
    f.env.Forward(to, amount)
    f.env.Emit(f.account, EvPaymentForwarded, map[string]string{
        "name": name, "from": string(from), "to": string(to),
        "amount": strconv.FormatUint(uint64(amount), 10),
    })
}

func (f *PaymentForwarder) SetDefaultResolver(res *Resolver) {
    if f.env.Caller() != f.admin {
        panic(ErrNotAdmin{Caller: f.env.Caller()})
    }
    f.defaultResolver = res
}
