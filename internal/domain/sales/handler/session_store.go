package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
)

// SessionName is the cookie name of the summary session.
const SessionName = "sales_summary"

const (
	keyOwner   = "owner"
	keySummary = "latest_summary"
	keyMode    = "latest_mode"
)

// ErrNoSummary is returned when the session holds no summary yet.
var ErrNoSummary = errors.New("no summary in session")

// SessionStore keeps the latest serialized summary and its mode in the
// caller's session. It also assigns each session a stable owner key used to
// scope upload history.
type SessionStore struct {
	store sessions.Store
}

// NewSessionStore wraps a gorilla session store.
func NewSessionStore(store sessions.Store) *SessionStore {
	return &SessionStore{store: store}
}

func (s *SessionStore) session(r *http.Request) (*sessions.Session, error) {
	sess, err := s.store.Get(r, SessionName)
	if err != nil && sess == nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	// A cookie that no longer decodes yields a fresh session, which is fine.
	return sess, nil
}

// Owner returns the owner key of the session, creating and saving one on the
// first call.
func (s *SessionStore) Owner(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := s.session(r)
	if err != nil {
		return "", err
	}
	if owner, ok := sess.Values[keyOwner].(string); ok && owner != "" {
		return owner, nil
	}

	owner := uuid.NewString()
	sess.Values[keyOwner] = owner
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return owner, nil
}

// Save stores sum as the latest summary of the session.
func (s *SessionStore) Save(w http.ResponseWriter, r *http.Request, sum *summary.Summary) error {
	sess, err := s.session(r)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(summary.Encode(sum))
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	sess.Values[keySummary] = string(raw)
	sess.Values[keyMode] = string(sum.Mode())
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load decodes the latest summary of the session. It returns ErrNoSummary
// when nothing was stored.
func (s *SessionStore) Load(r *http.Request) (*summary.Summary, error) {
	sess, err := s.session(r)
	if err != nil {
		return nil, err
	}

	raw, ok := sess.Values[keySummary].(string)
	if !ok || raw == "" {
		return nil, ErrNoSummary
	}
	mode, _ := sess.Values[keyMode].(string)
	if mode == "" {
		mode = string(summary.ModeDate)
	}

	var ser summary.Serialized
	if err := json.Unmarshal([]byte(raw), &ser); err != nil {
		return nil, fmt.Errorf("failed to read stored summary: %w", err)
	}
	return summary.Decode(ser, summary.Mode(mode))
}

// Clear removes the latest summary, keeping the owner key.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, err := s.session(r)
	if err != nil {
		return err
	}
	delete(sess.Values, keySummary)
	delete(sess.Values, keyMode)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
