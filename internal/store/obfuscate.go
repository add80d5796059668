// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// OBFUSCATION TRANSFORM
// =============================================================================

// ObfuscatedPrefix marks a stored value as obfuscated
// (format: OBF1:base64(value XOR keystream)).
const ObfuscatedPrefix = "OBF1:"

// keystreamSize is the length of the derived XOR keystream. Values longer
// than this cycle through the keystream.
const keystreamSize = 256

// keystreamIterations is the PBKDF2 iteration count for keystream derivation.
// Low on purpose: this is an obfuscation transform, not key stretching.
const keystreamIterations = 4096

var (
	// ErrEmptySeed indicates the obfuscator was built with no seed material.
	ErrEmptySeed = errors.New("obfuscation seed is empty")
	// ErrMalformedValue indicates a value carried the prefix but did not decode.
	ErrMalformedValue = errors.New("malformed obfuscated value")
)

// Obfuscator applies a reversible XOR transform to stored values.
//
// This is NOT encryption and is documented as such: the keystream is derived
// from material shipped with the client, so anyone holding the binary can
// reverse it. Its only job is keeping tokens out of casual reads of the
// database file. A platform keystore is the right tool for anything stronger.
type Obfuscator struct {
	keystream []byte
}

// NewObfuscator derives the XOR keystream from the given seed via
// PBKDF2-SHA-256. The same seed always yields the same keystream, which is
// what makes the transform reversible across app restarts.
func NewObfuscator(seed string) (*Obfuscator, error) {
	if strings.TrimSpace(seed) == "" {
		return nil, ErrEmptySeed
	}
	ks := pbkdf2.Key([]byte(seed), []byte("ufood.store.v1"), keystreamIterations, keystreamSize, sha256.New)
	return &Obfuscator{keystream: ks}, nil
}

// Apply obfuscates plain and wraps it in the OBF1 envelope.
func (o *Obfuscator) Apply(plain string) (string, error) {
	if len(o.keystream) == 0 {
		return "", ErrEmptySeed
	}
	data := []byte(plain)
	for i := range data {
		data[i] ^= o.keystream[i%len(o.keystream)]
	}
	return ObfuscatedPrefix + base64.RawStdEncoding.EncodeToString(data), nil
}

// Reverse undoes Apply. Values without the OBF1 prefix are returned as-is,
// which is how plaintext fallback writes remain readable.
func (o *Obfuscator) Reverse(value string) (string, error) {
	if !strings.HasPrefix(value, ObfuscatedPrefix) {
		return value, nil
	}
	if len(o.keystream) == 0 {
		return "", ErrEmptySeed
	}
	data, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, ObfuscatedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	for i := range data {
		data[i] ^= o.keystream[i%len(o.keystream)]
	}
	return string(data), nil
}

// IsObfuscated reports whether value carries the OBF1 envelope.
func IsObfuscated(value string) bool {
	return strings.HasPrefix(value, ObfuscatedPrefix)
}
