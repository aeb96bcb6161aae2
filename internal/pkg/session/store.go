// Package session keeps live login sessions in a bbolt file. A signed token is
// only honoured while its session id is present here, so logout and account
// removal take effect before the token expires.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/logger"
	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("Sessions")

// Session is the resolved identity behind a token.
type Session struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"userId"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens or creates the session file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	logger.Info().Str("path", path).Msg("Session store ready")
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the bbolt file
func (s *Store) Close() error {
	return s.db.Close()
}

// Create stores a new session for user valid for ttl.
func (s *Store) Create(ctx context.Context, user *models.User, ttl time.Duration) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Role:      user.Role,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put(sess.ID[:], data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Get returns the live session id. Missing and expired sessions both yield
// apperrors.ErrTokenRevoked.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sess Session
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get(id[:])
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &sess)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !found || sess.Expired(s.now()) {
		return nil, apperrors.ErrTokenRevoked
	}
	return &sess, nil
}

// Delete removes one session. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete(id[:])
	})
}

// DeleteUser removes every session of userID and returns how many there were.
func (s *Store) DeleteUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.deleteWhere(ctx, func(sess *Session) bool { return sess.UserID == userID })
}

// Purge drops expired sessions.
func (s *Store) Purge(ctx context.Context) (int, error) {
	now := s.now()
	return s.deleteWhere(ctx, func(sess *Session) bool { return sess.Expired(now) })
}

func (s *Store) deleteWhere(ctx context.Context, match func(*Session) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	removed := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		var doomed [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var sess Session
			if err := json.Unmarshal(v, &sess); err != nil {
				// unreadable entries are dropped
				doomed = append(doomed, append([]byte(nil), k...))
				return nil
			}
			if match(&sess) {
				doomed = append(doomed, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(doomed)
		return nil
	})
	return removed, err
}
