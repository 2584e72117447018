package ephemeral

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orbeelabs/ephemeral/store"
)

// Action identifies the data-subject-rights operation a confirmation token
// authorizes.
type Action string

const (
	// ActionExportData authorizes exporting every record held for the
	// subject.
	ActionExportData Action = "export-data"
	// ActionDeleteData authorizes erasing every record held for the
	// subject.
	ActionDeleteData Action = "delete-data"
	// ActionCorrectData authorizes applying the corrections carried in the
	// token's payload (name, phone, company).
	ActionCorrectData Action = "correct-data"
)

const tokenKeyPrefix = "token:"

// DefaultTokenTTL is how long an issued token stays redeemable.
const DefaultTokenTTL = 24 * time.Hour

// tokenRecord is the stored form of an issued token.
type tokenRecord struct {
	Subject  string            `json:"subject"`
	Action   Action            `json:"action"`
	Payload  map[string]string `json:"payload,omitempty"`
	IssuedAt time.Time         `json:"issued_at"`
}

// Redemption is the verified content of a redeemed token.
type Redemption struct {
	Subject  string
	Action   Action
	Payload  map[string]string
	IssuedAt time.Time
}

// TokenService issues and redeems single-use, time-bounded confirmation
// tokens. The token itself is the only credential: 32 random bytes rendered
// as hex, delivered to the subject out of band (an emailed confirmation
// link) and presented back exactly once.
type TokenService struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewTokenService creates a token service over the given store. A
// non-positive ttl selects [DefaultTokenTTL].
func NewTokenService(s store.Store, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{store: s, ttl: ttl, now: time.Now}
}

// Issue generates a fresh token for the subject and action and stores it
// with the service's validity window. The returned token is the caller's to
// deliver; this service never learns whether delivery succeeded.
func (ts *TokenService) Issue(ctx context.Context, subject string, action Action, payload map[string]string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ephemeral: generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	raw, err := json.Marshal(tokenRecord{
		Subject:  subject,
		Action:   action,
		Payload:  payload,
		IssuedAt: ts.now(),
	})
	if err != nil {
		return "", fmt.Errorf("ephemeral: encode token record: %w", err)
	}

	if err := ts.store.SetWithTTL(ctx, tokenKeyPrefix+token, raw, ts.ttl); err != nil {
		return "", fmt.Errorf("ephemeral: store token: %w", err)
	}
	return token, nil
}

// Redeem validates and consumes a token in one atomic step. ok is false
// when the token is unknown, expired, or already redeemed; those cases are
// deliberately indistinguishable so that guessed tokens learn nothing. On
// ok == true the token is gone and cannot be redeemed again, and the caller
// may perform the authorized action.
func (ts *TokenService) Redeem(ctx context.Context, token string) (Redemption, bool, error) {
	raw, found, err := ts.store.GetDelete(ctx, tokenKeyPrefix+token)
	if err != nil {
		return Redemption{}, false, fmt.Errorf("ephemeral: redeem token: %w", err)
	}
	if !found {
		return Redemption{}, false, nil
	}

	var rec tokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Redemption{}, false, fmt.Errorf("ephemeral: decode token record: %w", err)
	}
	return Redemption{
		Subject:  rec.Subject,
		Action:   rec.Action,
		Payload:  rec.Payload,
		IssuedAt: rec.IssuedAt,
	}, true, nil
}
