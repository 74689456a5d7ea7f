// Package session owns the authenticated identity of the current user and
// persists it so a restart restores the last known session.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/admetrics/internal/kv"
)

// Keys used in the backing key/value store.
const (
	TokenKey = "token"
	RoleKey  = "userRole"
)

// ErrIncompleteSession is returned when a session would be stored with only
// one of token and role.
var ErrIncompleteSession = errors.New("session requires both token and role")

// Role gates which metric columns a user may see.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

// ParseRole maps a role string from the API or storage to a Role. Anything
// other than admin is treated as standard.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleStandard
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Session is the authenticated identity. Token and Role are either both set
// or both empty.
type Session struct {
	Token string
	Role  Role
}

func (s Session) IsZero() bool { return s.Token == "" && s.Role == "" }

// Store holds the current session in memory and writes every change through
// to a kv.Store.
type Store struct {
	kv      kv.Store
	current Session
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Restore loads the persisted session. A missing or partial session yields
// the empty session; partial leftovers are removed from storage.
func (s *Store) Restore() Session {
	token, hasToken, err := s.kv.Get(TokenKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read persisted token")
		s.current = Session{}
		return s.current
	}
	role, hasRole, err := s.kv.Get(RoleKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read persisted role")
		s.current = Session{}
		return s.current
	}

	if token == "" || role == "" {
		s.current = Session{}
		if hasToken || hasRole {
			log.Debug().Bool("hasToken", hasToken).Bool("hasRole", hasRole).Msg("discarding partial session")
			if err := s.kv.Delete(TokenKey, RoleKey); err != nil {
				log.Warn().Err(err).Msg("failed to remove partial session")
			}
		}
		return s.current
	}

	s.current = Session{Token: token, Role: ParseRole(role)}

	log.Debug().Str("role", string(s.current.Role)).Msg("session restored")

	return s.current
}

// Set persists token and role together, then makes them current. On a
// storage failure the current session is left unchanged.
func (s *Store) Set(token string, role Role) error {
	if token == "" || role == "" {
		return ErrIncompleteSession
	}

	err := s.kv.SetMany(map[string]string{
		TokenKey: token,
		RoleKey:  string(role),
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.current = Session{Token: token, Role: role}

	log.Info().Str("role", string(role)).Msg("session stored")

	return nil
}

// Clear forgets the session in memory and in storage. The in-memory session
// is cleared even when storage fails.
func (s *Store) Clear() error {
	s.current = Session{}

	if err := s.kv.Delete(TokenKey, RoleKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	log.Info().Msg("session cleared")

	return nil
}

func (s *Store) IsAuthenticated() bool { return s.current.Token != "" }

func (s *Store) Current() Session { return s.current }
