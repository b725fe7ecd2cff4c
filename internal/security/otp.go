package security

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNoChallenge is returned when no live challenge exists for a key.
var ErrNoChallenge = errors.New("no active challenge")

// ChallengeStore keeps one-time signature codes with a TTL. Verification never
// deletes a challenge on mismatch; only Consume removes it.
type ChallengeStore interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Consume(ctx context.Context, key string) error
}

// SignatureChallengeKey scopes a code to one signer of one agreement.
func SignatureChallengeKey(agreementID, userID string) string {
	return fmt.Sprintf("rentnest:otp:agreement:%s:user:%s", agreementID, userID)
}

// GenerateCode returns a uniformly random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type redisChallengeStore struct {
	client *redis.Client
}

func NewRedisChallengeStore(client *redis.Client) ChallengeStore {
	return &redisChallengeStore{client: client}
}

func (s *redisChallengeStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	return s.client.Set(ctx, key, code, ttl).Err()
}

func (s *redisChallengeStore) Get(ctx context.Context, key string) (string, error) {
	code, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoChallenge
	}
	return code, err
}

func (s *redisChallengeStore) Consume(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memoryChallenge struct {
	code      string
	expiresAt time.Time
}

type memoryChallengeStore struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]memoryChallenge
}

// NewMemoryChallengeStore keeps challenges in process, for single-instance deployments.
func NewMemoryChallengeStore(now func() time.Time) ChallengeStore {
	if now == nil {
		now = time.Now
	}
	return &memoryChallengeStore{now: now, data: make(map[string]memoryChallenge)}
}

func (s *memoryChallengeStore) Put(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = memoryChallenge{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryChallengeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[key]
	if !ok || !s.now().Before(c.expiresAt) {
		delete(s.data, key)
		return "", ErrNoChallenge
	}
	return c.code, nil
}

func (s *memoryChallengeStore) Consume(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
