// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "testing"

    "github.com/ethereum/go-ethereum/common"
    "github.com/stretchr/testify/assert"
)

// well-known namehash reference vectors
func TestNameHash(t *testing.T) {
    assert.Equal(t, Node{}, NameHash(""), "empty name is the root node")
    assert.Equal(t,
        "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae",
        NameHash("eth").Hex(), "tld")
    assert.Equal(t,
        "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f",
        NameHash("foo.eth").Hex(), "leaf")
}

func TestSubNode(t *testing.T) {
    assert.Equal(t, NameHash("foo.eth"), SubNode(NameHash("eth"), LabelHash("foo")), "subnode matches namehash")
    assert.Equal(t, NameHash("a.b.c"), SubNode(NameHash("b.c"), LabelHash("a")), "deep subnode")
    assert.NotEqual(t, SubNode(RootNode, LabelHash("foo")), SubNode(RootNode, LabelHash("bar")), "labels separate")
}

func TestTokenOf(t *testing.T) {
    assert.Equal(t, common.Hash(TokenOf("bob")), LabelHash("bob"), "token id is the label hash")
}

func TestAccountHash(t *testing.T) {
    assert.Equal(t, AccountHash("Alice.Near"), AccountHash("alice.near"), "case folded")
    assert.NotEqual(t, AccountHash("alice.near"), AccountHash("bob.near"), "distinct accounts")
}
