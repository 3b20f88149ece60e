package security

import (
	"bearer-auth-server/config"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	jwkKeyTypeOKP   = "OKP"
	jwkCurveEd      = "Ed25519"
	jwkAlgEdDSA     = "EdDSA"
	jwkUseSignature = "sig"
)

// JSONWebKey : публичный Ed25519 ключ в формате JWK (RFC 8037)
type JSONWebKey struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Kid string `json:"kid"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
}

// JSONWebKeySet : набор ключей, который публикует издатель
type JSONWebKeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

// KeyManager : ключевой материал издателя. Приватный ключ отсюда не уходит,
// наружу публикуется только JWKS.
type KeyManager struct {
	signingKey ed25519.PrivateKey
	keyID      string
	published  []JSONWebKey
}

// NewKeyManager : ключ берется из jwt.private_key, затем из jwt.private_key_path.
// Если оба пусты, генерируется временный ключ, токены не переживут рестарт.
func NewKeyManager(cfg *config.JWTConfig) (*KeyManager, error) {
	pemData := strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")
	if pemData == "" && cfg.PrivateKeyPath != "" {
		data, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать приватный ключ: %w", err)
		}
		pemData = string(data)
	}

	var signingKey ed25519.PrivateKey
	if pemData == "" {
		_, generated, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("не удалось сгенерировать ключ подписи: %w", err)
		}
		slog.Warn("jwt.private_key не задан, используется временный ключ подписи")
		signingKey = generated
	} else {
		parsed, err := jwt.ParseEdPrivateKeyFromPEM([]byte(pemData))
		if err != nil {
			return nil, fmt.Errorf("некорректный приватный ключ: %w", err)
		}
		edKey, ok := parsed.(ed25519.PrivateKey)
		if !ok {
			return nil, errors.New("приватный ключ не является ed25519")
		}
		signingKey = edKey
	}

	previous := make([]ed25519.PublicKey, 0, len(cfg.PreviousPublicKeys))
	for i, raw := range cfg.PreviousPublicKeys {
		parsed, err := jwt.ParseEdPublicKeyFromPEM([]byte(strings.ReplaceAll(raw, `\n`, "\n")))
		if err != nil {
			return nil, fmt.Errorf("некорректный previous_public_keys[%d]: %w", i, err)
		}
		edKey, ok := parsed.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("previous_public_keys[%d] не является ed25519", i)
		}
		previous = append(previous, edKey)
	}

	return NewKeyManagerFromKey(signingKey, cfg.KeyID, previous...), nil
}

// NewKeyManagerFromKey : пустой keyID заменяется на JWK thumbprint (RFC 7638)
func NewKeyManagerFromKey(signingKey ed25519.PrivateKey, keyID string, previous ...ed25519.PublicKey) *KeyManager {
	public := signingKey.Public().(ed25519.PublicKey)
	if keyID == "" {
		keyID = Thumbprint(public)
	}

	published := []JSONWebKey{newJSONWebKey(public, keyID)}
	for _, key := range previous {
		kid := Thumbprint(key)
		if kid == keyID {
			continue
		}
		published = append(published, newJSONWebKey(key, kid))
	}

	return &KeyManager{
		signingKey: signingKey,
		keyID:      keyID,
		published:  published,
	}
}

func (m *KeyManager) SigningKey() ed25519.PrivateKey {
	return m.signingKey
}

func (m *KeyManager) KeyID() string {
	return m.keyID
}

// JWKS : копия опубликованного набора ключей
func (m *KeyManager) JWKS() *JSONWebKeySet {
	keys := make([]JSONWebKey, len(m.published))
	copy(keys, m.published)
	return &JSONWebKeySet{Keys: keys}
}

// Thumbprint : JWK thumbprint Ed25519 ключа, base64url без паддинга
func Thumbprint(key ed25519.PublicKey) string {
	canonical, _ := json.Marshal(struct {
		Crv string `json:"crv"`
		Kty string `json:"kty"`
		X   string `json:"x"`
	}{
		Crv: jwkCurveEd,
		Kty: jwkKeyTypeOKP,
		X:   base64.RawURLEncoding.EncodeToString(key),
	})
	sum := sha256.Sum256(canonical)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func newJSONWebKey(key ed25519.PublicKey, kid string) JSONWebKey {
	return JSONWebKey{
		Kty: jwkKeyTypeOKP,
		Crv: jwkCurveEd,
		X:   base64.RawURLEncoding.EncodeToString(key),
		Kid: kid,
		Alg: jwkAlgEdDSA,
		Use: jwkUseSignature,
	}
}

// KeySet : разобранный JWKS для проверки подписи
type KeySet struct {
	keys map[string]ed25519.PublicKey
}

var ErrNoUsableKeys = errors.New("jwks не содержит ed25519 ключей")

// NewKeySet : ключи другого типа пропускаются, набор без пригодных ключей считается ошибкой
func NewKeySet(jwks *JSONWebKeySet) (*KeySet, error) {
	if jwks == nil {
		return nil, ErrNoUsableKeys
	}

	keys := make(map[string]ed25519.PublicKey, len(jwks.Keys))
	for _, jwk := range jwks.Keys {
		if jwk.Kty != jwkKeyTypeOKP || jwk.Crv != jwkCurveEd {
			continue
		}
		if jwk.Use != "" && jwk.Use != jwkUseSignature {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(jwk.X)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			slog.Warn("пропущен некорректный jwk", "kid", jwk.Kid)
			continue
		}
		keys[jwk.Kid] = ed25519.PublicKey(raw)
	}

	if len(keys) == 0 {
		return nil, ErrNoUsableKeys
	}

	return &KeySet{keys: keys}, nil
}

// Lookup : ключ по kid. Токен без kid принимается, только если ключ в наборе один.
func (s *KeySet) Lookup(kid string) (ed25519.PublicKey, bool) {
	if kid == "" {
		if len(s.keys) != 1 {
			return nil, false
		}
		for _, key := range s.keys {
			return key, true
		}
	}

	key, ok := s.keys[kid]
	return key, ok
}

func (s *KeySet) Len() int {
	return len(s.keys)
}
