package otpcache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/pkg/instrument"
)

const (
	fieldCode      = "code"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
	fieldVerified  = "verified"
)

// Store keeps at most one OTP challenge per email in a redis hash.
//
// The key TTL is the background sweep for abandoned challenges; it is
// best-effort and callers still compare expires_at explicitly.
type Store struct {
	client    *redis.Client
	ins       instrument.Instrumentation
	retention time.Duration
}

func NewStore(client *redis.Client, ins instrument.Instrumentation, retention time.Duration) *Store {
	return &Store{
		client:    client,
		ins:       ins,
		retention: retention,
	}
}

func (s *Store) key(email string) string {
	return "otp:" + email
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.outbound.otpcache").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Upsert replaces any challenge for the email wholesale, resetting attempts
// and the verified flag. Last writer wins.
func (s *Store) Upsert(ctx context.Context, ch entity.OtpChallenge) (err error) {
	ctx, span := s.startSpan(ctx, "Upsert")
	defer func() { s.endSpan(span, err) }()

	key := s.key(ch.Email)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		fieldCode:      ch.Code,
		fieldCreatedAt: ch.CreatedAt.Unix(),
		fieldExpiresAt: ch.ExpiresAt.Unix(),
		fieldAttempts:  ch.Attempts,
		fieldVerified:  boolToInt(ch.Verified),
	})
	pipe.ExpireAt(ctx, key, ch.ExpiresAt.Add(s.retention))

	_, err = pipe.Exec(ctx)
	return err
}

// Find returns the current challenge or goerror.ErrNotFound.
func (s *Store) Find(ctx context.Context, email string) (ch *entity.OtpChallenge, err error) {
	ctx, span := s.startSpan(ctx, "Find")
	defer func() { s.endSpan(span, err) }()

	values, err := s.client.HGetAll(ctx, s.key(email)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, goerror.ErrNotFound
	}

	createdAt, _ := strconv.ParseInt(values[fieldCreatedAt], 10, 64)
	expiresAt, _ := strconv.ParseInt(values[fieldExpiresAt], 10, 64)
	attempts, _ := strconv.ParseInt(values[fieldAttempts], 10, 64)

	return &entity.OtpChallenge{
		Email:     email,
		Code:      values[fieldCode],
		CreatedAt: time.Unix(createdAt, 0),
		ExpiresAt: time.Unix(expiresAt, 0),
		Attempts:  attempts,
		Verified:  values[fieldVerified] == "1",
	}, nil
}

// IncrementAttempts atomically bumps the failure counter and returns the new
// value. HINCRBY guarantees no lost increments under concurrent probing.
func (s *Store) IncrementAttempts(ctx context.Context, email string) (attempts int64, err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempts")
	defer func() { s.endSpan(span, err) }()

	return s.client.HIncrBy(ctx, s.key(email), fieldAttempts, 1).Result()
}

// MarkVerified flags the challenge as consumed-by-verification so a follow-up
// step (signup, password reset) can rely on it.
func (s *Store) MarkVerified(ctx context.Context, email string) (err error) {
	ctx, span := s.startSpan(ctx, "MarkVerified")
	defer func() { s.endSpan(span, err) }()

	return s.client.HSet(ctx, s.key(email), fieldVerified, 1).Err()
}

// Delete removes the challenge.
func (s *Store) Delete(ctx context.Context, email string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	return s.client.Del(ctx, s.key(email)).Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
