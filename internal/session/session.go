// Package session keeps the authenticated user's token, id and role in the
// key-value store and tears them down on logout or when the API answers 401.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dwikikusuma/epicerie/pkg/kv"
)

type Role string

const (
	RoleClient  Role = "client"
	RoleEpicier Role = "epicier"
	RoleLivreur Role = "livreur"
)

// The token, user id and role live together in one slot so a session is
// never half written.
const sessionKey = "session"

var (
	ErrNoSession      = errors.New("no active session")
	ErrInvalidSession = errors.New("session needs a token and a user id")
)

type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// CartClearer empties a user's cart on logout.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

type Store struct {
	kv   kv.Store
	cart CartClearer
	log  *slog.Logger
}

func NewStore(store kv.Store, cart CartClearer, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{kv: store, cart: cart, log: log.With("component", "session")}
}

func (s *Store) Save(ctx context.Context, sess Session) error {
	if sess.Token == "" || sess.UserID == "" {
		return ErrInvalidSession
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, sessionKey, raw, 0); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Current returns the stored session. A slot that does not decode to a
// token and a user id counts as no session.
func (s *Store) Current(ctx context.Context) (Session, error) {
	raw, err := s.kv.Get(ctx, sessionKey)
	if errors.Is(err, kv.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Token == "" || sess.UserID == "" {
		s.log.Warn("discarding unreadable session slot")
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Token implements remote.TokenSource; no session means no token.
func (s *Store) Token(ctx context.Context) (string, error) {
	sess, err := s.Current(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Invalidate drops the session slot. It is what the API client calls on 401.
func (s *Store) Invalidate(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	s.log.Info("session invalidated")
	return nil
}

// Logout clears the user's cart and the session.
func (s *Store) Logout(ctx context.Context) error {
	sess, err := s.Current(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.cart != nil && sess.UserID != "" {
		if err := s.cart.ClearCart(ctx, sess.UserID); err != nil {
			s.log.Warn("clear cart on logout failed", slog.String("user_id", sess.UserID), slog.Any("err", err))
		}
	}
	return s.Invalidate(ctx)
}
