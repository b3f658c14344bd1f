package games

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"sync"
)

// Source supplies uniform randomness in [0,1). Game resolvers never draw
// on their own; the source is injected so resolution stays deterministic
// under test.
type Source interface {
	Float64() float64
}

// HashSource derives draws from HMAC-SHA256(serverSeed, "clientSeed:nonce"),
// incrementing the nonce per draw. The server seed hash is published up
// front so a player can verify past draws once the seed is revealed.
type HashSource struct {
	mu         sync.Mutex
	serverSeed string
	clientSeed string
	nonce      uint64
}

func NewHashSource(serverSeed, clientSeed string) *HashSource {
	return &HashSource{serverSeed: serverSeed, clientSeed: clientSeed}
}

// NewRandomHashSource creates a source with a fresh random server seed.
func NewRandomHashSource(clientSeed string) (*HashSource, error) {
	seed, err := GenerateSeed()
	if err != nil {
		return nil, err
	}
	return NewHashSource(seed, clientSeed), nil
}

func GenerateSeed() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate seed: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func (s *HashSource) Float64() float64 {
	s.mu.Lock()
	nonce := s.nonce
	s.nonce++
	s.mu.Unlock()

	return DrawAt(s.serverSeed, s.clientSeed, nonce)
}

// DrawAt recomputes the draw for a given nonce, for fairness verification.
func DrawAt(serverSeed, clientSeed string, nonce uint64) float64 {
	message := fmt.Sprintf("%s:%d", clientSeed, nonce)
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(message))
	hash := hex.EncodeToString(h.Sum(nil))

	// First 52 bits (13 hex characters) of the hash map onto [0,1).
	n := new(big.Int)
	n.SetString(hash[:13], 16)

	return float64(n.Int64()) / math.Pow(2, 52)
}

// ServerHash returns the SHA-256 commitment to the server seed.
func (s *HashSource) ServerHash() string {
	hash := sha256.Sum256([]byte(s.serverSeed))
	return hex.EncodeToString(hash[:])
}

func (s *HashSource) ClientSeed() string {
	return s.clientSeed
}

func (s *HashSource) Nonce() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonce
}
