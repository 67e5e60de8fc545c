// Package filestore keeps the credential pair in a local file, sealed with
// NaCl secretbox when a passphrase is configured.
package filestore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-storefront/token"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

var _ token.Store = (*Store)(nil)

const (
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32
)

var sealedMagic = []byte("SFT1")

var ErrDecrypt = errors.New("token file could not be decrypted")

type record map[string]string

// Store is a token.Store backed by a single file.
type Store struct {
	path       string
	passphrase []byte
	lock       sync.Mutex
}

// New returns a Store writing to path. An empty passphrase stores the pair as
// plain JSON readable only by the owner.
func New(path, passphrase string) *Store {
	return &Store{path: path, passphrase: []byte(passphrase)}
}

func (s *Store) Get(_ context.Context) (token.Pair, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return token.Pair{}, nil
	}
	if err != nil {
		return token.Pair{}, fmt.Errorf("read token file: %w", err)
	}

	plain, err := s.open(raw)
	if err != nil {
		return token.Pair{}, err
	}

	var rec record
	if err := json.Unmarshal(plain, &rec); err != nil {
		return token.Pair{}, fmt.Errorf("decode token file: %w", err)
	}
	return token.Pair{
		AccessToken:  rec[token.AccessTokenKey],
		RefreshToken: rec[token.RefreshTokenKey],
	}, nil
}

func (s *Store) Set(_ context.Context, pair token.Pair) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	plain, err := json.Marshal(record{
		token.AccessTokenKey:  pair.AccessToken,
		token.RefreshTokenKey: pair.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}

	data, err := s.seal(plain)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, data)
}

func (s *Store) Clear(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	if len(s.passphrase) == 0 {
		return plain, nil
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(sealedMagic)+saltLength+nonceLength+len(plain)+secretbox.Overhead)
	out = append(out, sealedMagic...)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, key), nil
}

func (s *Store) open(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, sealedMagic) {
		if len(s.passphrase) > 0 {
			return nil, ErrDecrypt
		}
		return data, nil
	}
	if len(s.passphrase) == 0 {
		return nil, ErrDecrypt
	}

	body := data[len(sealedMagic):]
	if len(body) < saltLength+nonceLength+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	salt := body[:saltLength]
	var nonce [nonceLength]byte
	copy(nonce[:], body[saltLength:saltLength+nonceLength])

	key, err := s.deriveKey(salt)
	if err != nil {
		return nil, err
	}
	plain, ok := secretbox.Open(nil, body[saltLength+nonceLength:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func (s *Store) deriveKey(salt []byte) (*[keyLength]byte, error) {
	derived, err := scrypt.Key(s.passphrase, salt, 1<<15, 8, 1, keyLength)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	var key [keyLength]byte
	copy(key[:], derived)
	return &key, nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
