package keystore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/mobapp/internal/cryptox"
)

const saltSize = 16

// SealedStore encrypts values before handing them to the inner store.
// The argon2 salt lives unencrypted in the inner store under KeySealSalt, so
// the same passphrase opens the same store across restarts.
type SealedStore struct {
	inner Store
	key   []byte
}

// NewSealedStore derives the sealing key from passphrase, creating and
// persisting a random salt on first use.
func NewSealedStore(ctx context.Context, inner Store, passphrase []byte) (*SealedStore, error) {
	salt, err := loadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}
	return &SealedStore{inner: inner, key: cryptox.DeriveKey(passphrase, salt)}, nil
}

func loadOrCreateSalt(ctx context.Context, inner Store) ([]byte, error) {
	encoded, ok, err := inner.Get(ctx, KeySealSalt)
	if err != nil {
		return nil, fmt.Errorf("read seal salt: %w", err)
	}
	if ok {
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode seal salt: %w", err)
		}
		return salt, nil
	}

	salt, err := cryptox.RandomBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("generate seal salt: %w", err)
	}
	if err := inner.Set(ctx, KeySealSalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("store seal salt: %w", err)
	}
	return salt, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	value, err := cryptox.OpenString(sealed, s.key)
	if err != nil {
		return "", false, fmt.Errorf("failed to open kv[%s]: %w", key, err)
	}
	return value, true, nil
}

func (s *SealedStore) Set(ctx context.Context, key string, value string) error {
	sealed, err := cryptox.SealString(value, s.key)
	if err != nil {
		return fmt.Errorf("failed to seal kv[%s]: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedStore) Remove(ctx context.Context, keys ...string) error {
	return s.inner.Remove(ctx, keys...)
}

// Keys lists the inner store's keys without the salt. It fails when the
// inner store cannot enumerate keys.
func (s *SealedStore) Keys(ctx context.Context) ([]string, error) {
	l, ok := s.inner.(Lister)
	if !ok {
		return nil, fmt.Errorf("keys: %w", errors.ErrUnsupported)
	}
	keys, err := l.Keys(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(keys, func(k string) bool { return k == KeySealSalt }), nil
}
