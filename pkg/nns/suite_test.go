// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "testing"

    "blockwatch.cc/nns-near/pkg/near"
)

const (
    ADMIN    = "admin.near"
    ALICE    = "alice.near"
    BOB      = "bob.near"
    CAROL    = "carol.near"
    TREASURY = "treasury.near"
    SECRET   = "0c6fde2fa16cd4d33a4a25bb124ab9e06b33b5328fb6b0ba8e4c4324a8a5a6ea"

    ONE_YEAR = int64(SECONDS_PER_YEAR)
    GENESIS  = int64(1_600_000_000)
)

func newTestSuite() (*near.Env, *Suite) {
    env := near.NewEnv(GENESIS)
    s := Deploy(env, ADMIN, "near", TREASURY)
    for _, acc := range []near.AccountID{ALICE, BOB, CAROL} {
        env.Fund(acc, 1_000_000)
    }
    return env, s
}

// commit, wait out the minimum age, reveal
func mustRegister(t *testing.T, env *near.Env, s *Suite, caller near.AccountID, label string, owner near.AccountID, duration int64, deposit near.Money) {
    t.Helper()
    env.Call(caller, 0, func() {
        s.Ctrl.Commit(s.Ctrl.MakeCommitment(label, owner, SECRET))
    })
    env.Skip(MIN_COMMITMENT_AGE + 1)
    env.Call(caller, deposit, func() {
        s.Ctrl.Register(label, owner, duration, SECRET)
    })
}
