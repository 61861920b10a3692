// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package trust adds signed-integrity to a decoded configuration tree: a
// canonical digest of the element tree is computed and signed with
// secp256k1, so a config bundle can be verified before it ever reaches the
// mapping engine. Key material is derived per deployment environment via
// BIP-32 hierarchical derivation from one root seed, the same technique the
// teacher's wallet code used to derive per-account Tezos signing keys.
package trust

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/blake2b"

	"github.com/tigritik/Butylene/element"
)

var (
	ErrInvalidSignature = errors.New("trust: signature verification failed")
)

// Signature is a detached secp256k1 signature over a config bundle's
// canonical digest.
type Signature struct {
	Digest [32]byte
	Sig    []byte
}

// Digest computes a canonical, order-stable digest of root: Node entries
// are already insertion-ordered, so unlike a generic map-based tree this
// requires no separate key-sorting pass to be reproducible across
// encode/decode round trips of the same logical document - Digest sorts
// keys anyway so that two Nodes built in different insertion order but
// carrying the same entries still hash identically, the property a
// signature check actually needs.
func Digest(root element.Element) [32]byte {
	h, _ := blake2b.New256(nil)
	writeDigest(h, root)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeDigest(h interface{ Write([]byte) (int, error) }, e element.Element) {
	switch v := e.(type) {
	case nil:
		h.Write([]byte{0x00})
	case element.Scalar:
		h.Write([]byte{0x01})
		writeScalar(h, v.Value)
	case *element.List:
		h.Write([]byte{0x02})
		writeUint(h, uint64(v.Size()))
		for _, item := range v.Items() {
			writeDigest(h, item)
		}
	case *element.Node:
		h.Write([]byte{0x03})
		keys := append([]string(nil), v.Keys()...)
		sort.Strings(keys)
		writeUint(h, uint64(len(keys)))
		for _, k := range keys {
			writeUint(h, uint64(len(k)))
			h.Write([]byte(k))
			child, _ := v.Get(k)
			writeDigest(h, child)
		}
	}
}

func writeUint(h interface{ Write([]byte) (int, error) }, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
}

func writeScalar(h interface{ Write([]byte) (int, error) }, v any) {
	switch val := v.(type) {
	case nil:
		h.Write([]byte{0x00})
	case bool:
		if val {
			h.Write([]byte{0x01})
		} else {
			h.Write([]byte{0x00})
		}
	case int64:
		writeUint(h, uint64(val))
	case float64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(val))
		h.Write(buf[:])
	case string:
		writeUint(h, uint64(len(val)))
		h.Write([]byte(val))
	default:
		h.Write([]byte{0xff})
	}
}

// Sign computes Digest(root) and signs it with priv.
func Sign(root element.Element, priv *secp256k1.PrivateKey) (Signature, error) {
	d := Digest(root)
	sig := ecdsa.Sign(priv, d[:])
	return Signature{Digest: d, Sig: sig.Serialize()}, nil
}

// Verify recomputes Digest(root) and checks it against sig using pub,
// rejecting the bundle if either the digest or the signature itself
// disagree.
func Verify(root element.Element, sig Signature, pub *secp256k1.PublicKey) error {
	d := Digest(root)
	if !hmac.Equal(d[:], sig.Digest[:]) {
		return errors.Wrap(ErrInvalidSignature, "digest mismatch")
	}
	parsed, err := ecdsa.ParseDERSignature(sig.Sig)
	if err != nil {
		return errors.Wrap(err, "trust: parsing signature")
	}
	if !parsed.Verify(d[:], pub) {
		return ErrInvalidSignature
	}
	return nil
}

// environmentIndex maps a deployment environment name to a fixed BIP-32
// child index, so the same environment name always derives the same key
// from a given root seed.
var environmentIndex = map[string]uint32{
	"prod":    bip32.FirstHardenedChild + 0,
	"staging": bip32.FirstHardenedChild + 1,
	"dev":     bip32.FirstHardenedChild + 2,
}

// KeyForEnvironment derives a secp256k1 private key for env from seed via
// BIP-32 hierarchical derivation, so one root secret can mint a distinct,
// reproducible verification key per deployment environment without storing
// them all separately.
func KeyForEnvironment(seed []byte, env string) (*secp256k1.PrivateKey, error) {
	idx, ok := environmentIndex[env]
	if !ok {
		return nil, errors.Errorf("trust: unknown environment %q", env)
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "trust: deriving master key")
	}
	child, err := master.NewChildKey(idx)
	if err != nil {
		return nil, errors.Wrap(err, "trust: deriving child key")
	}
	priv := secp256k1.PrivKeyFromBytes(normalizeKey(child.Key))
	return priv, nil
}

// normalizeKey guards against a BIP-32 child key (an arbitrary 256-bit
// integer) landing outside secp256k1's field order; PrivKeyFromBytes
// itself reduces mod N, but sha256-stretching first keeps the
// distribution close to uniform rather than relying on that reduction for
// every input.
func normalizeKey(k []byte) []byte {
	sum := sha256.Sum256(k)
	return sum[:]
}
