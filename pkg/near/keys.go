// Copyright (c) 2022 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package near

import (
    "crypto/ed25519"
    "crypto/sha256"
    "strings"

    "github.com/mr-tron/base58"
)

const keyPrefix = "ed25519:"

// KeyPair is an ed25519 signing key deterministically derived from a
// seed phrase.
type KeyPair struct {
    priv ed25519.PrivateKey
    pub  ed25519.PublicKey
}

func NewKeyPairFromSeed(seed string) *KeyPair {
    sum := sha256.Sum256([]byte(seed))
    priv := ed25519.NewKeyFromSeed(sum[:])
    return &KeyPair{
        priv: priv,
        pub:  priv.Public().(ed25519.PublicKey),
    }
}

func (k *KeyPair) Sign(msg []byte) []byte {
    return ed25519.Sign(k.priv, msg)
}

// Pubkey encodes the public key in the ledger's ed25519:<base58> form.
func (k *KeyPair) Pubkey() Pubkey {
    return Pubkey(keyPrefix + base58.Encode(k.pub))
}

func EncodeSignature(sig []byte) Signature {
    return Signature(base58.Encode(sig))
}

// Verify checks a signature over msg against the encoded public key.
// Malformed keys or signatures verify as false.
func (p Pubkey) Verify(msg []byte, sig Signature) bool {
    pub, err := base58.Decode(strings.TrimPrefix(string(p), keyPrefix))
    if err != nil || len(pub) != ed25519.PublicKeySize {
        return false
    }
    raw, err := base58.Decode(string(sig))
    if err != nil {
        return false
    }
    return ed25519.Verify(ed25519.PublicKey(pub), msg, raw)
}
