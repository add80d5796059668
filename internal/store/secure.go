// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// =============================================================================
// SECURE STORE (OBFUSCATING DECORATOR)
// =============================================================================

// SecureStore decorates a DeviceStore with the obfuscation transform.
// Every value is obfuscated on the way in and reversed on the way out.
//
// Failure policy, chosen to never lose data:
//   - Set: if the transform fails, the value is stored unobfuscated and a
//     warning is logged.
//   - Get: if reversing fails, the raw stored string is returned.
//   - MultiGet: an underlying read error yields an empty map, not a failure;
//     callers treat missing keys as "no session".
type SecureStore struct {
	device DeviceStore
	obf    *Obfuscator
}

// NewSecureStore wraps device with the obfuscation transform seeded by seed.
func NewSecureStore(device DeviceStore, seed string) (*SecureStore, error) {
	obf, err := NewObfuscator(seed)
	if err != nil {
		return nil, fmt.Errorf("build obfuscator: %w", err)
	}
	return &SecureStore{device: device, obf: obf}, nil
}

// Set writes key with the obfuscated value. A failed transform degrades to a
// plaintext write rather than losing the value.
func (s *SecureStore) Set(ctx context.Context, key, value string) error {
	enc, err := s.obf.Apply(value)
	if err != nil {
		log.Printf("store: obfuscation failed for %q, storing plaintext: %v", key, err)
		enc = value
	}
	return s.device.Set(ctx, key, enc)
}

// SetJSON marshals v to its canonical JSON form and stores it under key.
func (s *SecureStore) SetJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

// Get reads and deobfuscates key. ok is false when the key does not exist.
func (s *SecureStore) Get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.device.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, derr := s.obf.Reverse(raw)
	if derr != nil {
		// Unreadable transform output: surface the raw value instead of
		// failing the read.
		log.Printf("store: deobfuscation failed for %q, returning raw value: %v", key, derr)
		return raw, true, nil
	}
	return plain, true, nil
}

// GetJSON reads key and unmarshals its value into v.
// ok is false when the key does not exist.
func (s *SecureStore) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	plain, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(plain), v); err != nil {
		return true, fmt.Errorf("unmarshal %q: %w", key, err)
	}
	return true, nil
}

// Remove deletes a single key.
func (s *SecureStore) Remove(ctx context.Context, key string) error {
	return s.device.Remove(ctx, key)
}

// Clear deletes every key. Session teardown calls this.
func (s *SecureStore) Clear(ctx context.Context) error {
	return s.device.Clear(ctx)
}

// MultiSet obfuscates and writes all pairs together.
func (s *SecureStore) MultiSet(ctx context.Context, pairs map[string]string) error {
	enc := make(map[string]string, len(pairs))
	for key, value := range pairs {
		ev, err := s.obf.Apply(value)
		if err != nil {
			log.Printf("store: obfuscation failed for %q, storing plaintext: %v", key, err)
			ev = value
		}
		enc[key] = ev
	}
	return s.device.MultiSet(ctx, enc)
}

// MultiGet reads and deobfuscates keys. A failed underlying read yields an
// empty map so callers fall through to the "no session" path.
func (s *SecureStore) MultiGet(ctx context.Context, keys []string) map[string]string {
	raw, err := s.device.MultiGet(ctx, keys)
	if err != nil {
		log.Printf("store: multiGet failed, treating as empty: %v", err)
		return map[string]string{}
	}
	result := make(map[string]string, len(raw))
	for key, value := range raw {
		plain, derr := s.obf.Reverse(value)
		if derr != nil {
			log.Printf("store: deobfuscation failed for %q, returning raw value: %v", key, derr)
			plain = value
		}
		result[key] = plain
	}
	return result
}

// Close releases the underlying device store.
func (s *SecureStore) Close() error {
	return s.device.Close()
}
