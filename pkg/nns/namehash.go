// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package nns

import (
    "strings"

    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/crypto"
)

// LabelHash hashes a single name segment.
func LabelHash(label string) common.Hash {
    return crypto.Keccak256Hash([]byte(label))
}

// SubNode derives a child node from a parent node and a label hash.
func SubNode(parent Node, label common.Hash) Node {
    return Node(crypto.Keccak256Hash(append(common.Hash(parent).Bytes(), label.Bytes()...)))
}

// NameHash maps a dotted name onto its node, recursing right to left.
// The empty name maps to the root node.
func NameHash(name string) Node {
    if name == "" {
        return RootNode
    }
    labels := strings.Split(name, ".")
    parent := NameHash(strings.Join(labels[1:], "."))
    return SubNode(parent, LabelHash(labels[0]))
}

// AccountHash hashes an account id into the label used under the
// reverse namespace.
func AccountHash(acc string) common.Hash {
    return crypto.Keccak256Hash([]byte(strings.ToLower(acc)))
}

// TokenOf maps a leaf label onto its registrar token id.
func TokenOf(label string) TokenID {
    return TokenID(LabelHash(label))
}
