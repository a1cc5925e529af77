// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package near

import (
    "github.com/echa/log"
)

// Event is a ledger log entry emitted by a contract, consumable by
// external indexers and by tests.
type Event struct {
    Emitter AccountID
    Kind    string
    Attrs   map[string]string
}

type frame struct {
    caller  AccountID
    origin  AccountID
    deposit Money
}

// Env is a single-threaded in-process ledger: account balances, a
// caller frame stack, deployed contract lookup, block clock and an
// event feed. All contract state transitions run synchronously inside
// a Call or Invoke frame; there is no concurrent mutation. Contracts
// revert by panicking before touching state, an aborted frame returns
// its remaining attached deposit to the sender.
type Env struct {
    height    int64
    now       int64 // unix seconds
    balances  map[AccountID]Money
    contracts map[AccountID]interface{}
    frames    []*frame
    events    []Event
}

func NewEnv(genesis int64) *Env {
    return &Env{
        height:    1,
        now:       genesis,
        balances:  make(map[AccountID]Money),
        contracts: make(map[AccountID]interface{}),
        frames:    make([]*frame, 0),
        events:    make([]Event, 0),
    }
}

func (e *Env) Height() int64 {
    return e.height
}

func (e *Env) Now() int64 {
    return e.now
}

// Skip advances the clock, one block per second.
func (e *Env) Skip(seconds int64) {
    if seconds < 0 {
        panic("cannot rewind the clock")
    }
    e.now += seconds
    e.height += seconds
}

func (e *Env) Fund(acc AccountID, amount Money) {
    e.balances[acc] += amount
}

func (e *Env) Balance(acc AccountID) Money {
    return e.balances[acc]
}

// Deploy binds a contract instance to an account id.
func (e *Env) Deploy(acc AccountID, contract interface{}) {
    if acc == "" {
        panic("empty contract account")
    }
    if _, ok := e.contracts[acc]; ok {
        panic("account already holds a contract")
    }
    e.contracts[acc] = contract
}

func (e *Env) ContractAt(acc AccountID) interface{} {
    return e.contracts[acc]
}

func (e *Env) top() *frame {
    if len(e.frames) == 0 {
        panic("no active call frame")
    }
    return e.frames[len(e.frames)-1]
}

func (e *Env) Caller() AccountID {
    return e.top().caller
}

// Origin is the signer of the top-level transaction the current frame
// descends from.
func (e *Env) Origin() AccountID {
    return e.top().origin
}

// Deposit returns the attached deposit still undisbursed in the
// current frame.
func (e *Env) Deposit() Money {
    return e.top().deposit
}

// Call runs fn as a signed transaction from the given account with an
// attached deposit. The deposit is debited up front; whatever fn does
// not disburse via Forward flows back to the sender when the frame
// unwinds, including on a revert.
func (e *Env) Call(from AccountID, deposit Money, fn func()) {
    if from == "" {
        panic("empty sender account")
    }
    if e.balances[from] < deposit {
        panic("sender balance below attached deposit")
    }
    e.balances[from] -= deposit
    f := &frame{caller: from, origin: from, deposit: deposit}
    e.frames = append(e.frames, f)
    defer func() {
        e.balances[from] += f.deposit
        f.deposit = 0
        e.frames = e.frames[:len(e.frames)-1]
    }()
    fn()
}

// Invoke runs fn as a cross-contract call made by the given contract
// account. No deposit is attached; the frame below keeps its funds.
func (e *Env) Invoke(contract AccountID, fn func()) {
    origin := contract
    if len(e.frames) > 0 {
        origin = e.top().origin
    }
    e.frames = append(e.frames, &frame{caller: contract, origin: origin})
    defer func() {
        e.frames = e.frames[:len(e.frames)-1]
    }()
    fn()
}

// Forward pays amount out of the current frame's attached deposit.
func (e *Env) Forward(to AccountID, amount Money) {
    if to == "" {
        panic("transfer to empty account")
    }
    f := e.top()
    if f.deposit < amount {
        panic("transfer exceeds attached deposit")
    }
    f.deposit -= amount
    e.balances[to] += amount
}

func (e *Env) Emit(emitter AccountID, kind string, attrs map[string]string) {
    e.events = append(e.events, Event{Emitter: emitter, Kind: kind, Attrs: attrs})
    log.Debugf("%s %s %v", emitter, kind, attrs)
}

func (e *Env) Events() []Event {
    return e.events
}

// LastEvent returns the most recent event of the given kind, or nil.
func (e *Env) LastEvent(kind string) *Event {
    for i := len(e.events) - 1; i >= 0; i-- {
        if e.events[i].Kind == kind {
            return &e.events[i]
        }
    }
    return nil
}
