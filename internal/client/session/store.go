package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/repositories/metadata"
	"github.com/euronode/euronode/internal/common"
	"github.com/euronode/euronode/internal/dbx"
	"github.com/euronode/euronode/internal/logging"
)

var (
	ErrNoSession = errors.New("no active session")
	// ErrLoginRequired is returned by Provider.Require when nobody is signed in.
	ErrLoginRequired = errors.New("login required")
)

const savedAtKey = "user_saved_at"

type Store interface {
	// Load returns ErrNoSession when nothing usable is stored.
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the session as JSON under the "user" metadata key.
type SQLiteStore struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB, log logging.Logger) *SQLiteStore {
	if log == nil {
		log = logging.Nop()
	}
	return &SQLiteStore{db: db, log: log, now: time.Now}
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Session, error) {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.SessionKey)
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	if raw == nil {
		return models.Session{}, ErrNoSession
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.log.Warn(ctx, "stored session is not valid JSON, ignoring it", "error", err)
		return models.Session{}, ErrNoSession
	}
	if err := sess.Validate(); err != nil {
		s.log.Warn(ctx, "stored session is incomplete, ignoring it", "error", err)
		return models.Session{}, ErrNoSession
	}
	return sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess models.Session) error {
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	stamp := []byte(s.now().UTC().Format(time.RFC3339))

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SessionKey, raw); err != nil {
			return err
		}
		return repo.Set(ctx, savedAtKey, stamp)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.SessionKey, savedAtKey)
	})
}

// SavedAt reports when the current session was stored. The zero time means
// no session or no stamp.
func (s *SQLiteStore) SavedAt(ctx context.Context) (time.Time, error) {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, savedAtKey)
	if err != nil || raw == nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

// MemoryStore is a Store kept in memory, for tests and throwaway runs.
type MemoryStore struct {
	mu   sync.Mutex
	sess *models.Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(context.Context) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return models.Session{}, ErrNoSession
	}
	return *m.sess, nil
}

func (m *MemoryStore) Save(_ context.Context, s models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &s
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
