package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
)

// requestWithValues saves values into a fresh session and returns a request
// carrying its cookie.
func requestWithValues(t *testing.T, store sessions.Store, values map[string]string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := store.Get(req, SessionName)
	require.NoError(t, err)
	for k, v := range values {
		sess.Values[k] = v
	}
	rec := httptest.NewRecorder()
	require.NoError(t, sess.Save(req, rec))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

func TestSessionStore_LoadDefaultsToDateMode(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	req := requestWithValues(t, store, map[string]string{
		keySummary: `{"05-01-2024":"12.5"}`,
	})

	s, err := NewSessionStore(store).Load(req)
	require.NoError(t, err)

	assert.Equal(t, summary.ModeDate, s.Mode())
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "05/01/2024", s.Entries()[0].Key.Label())
}

func TestSessionStore_LoadWithoutSummary(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	req := requestWithValues(t, store, map[string]string{keyOwner: "owner-1"})

	_, err := NewSessionStore(store).Load(req)
	assert.ErrorIs(t, err, ErrNoSummary)
}

func TestSessionStore_SaveThenLoad(t *testing.T) {
	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	ss := NewSessionStore(store)

	b := summary.NewBuilder(summary.ModeItem)
	require.NoError(t, b.Add(summary.ByItem("Pen"), decimal.RequireFromString("3.5")))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, ss.Save(rec, req, b.Build()))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}

	s, err := ss.Load(next)
	require.NoError(t, err)
	assert.Equal(t, summary.ModeItem, s.Mode())
	assert.Equal(t, "3.5", s.Total().String())
}
