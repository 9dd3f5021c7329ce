package storage

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidImage    = errors.New("invalid image url")
)

// Themes lists the accepted values of Settings.Theme.
var Themes = []string{"default", "dark", "blue", "neon"}

// Settings is the per-user UI preference blob.
type Settings struct {
	ProfilePic    string `json:"profilePic"`
	BackgroundImg string `json:"backgroundImg"`
	Theme         string `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{Theme: "default"}
}

// Validate normalizes an empty theme to the default and rejects unknown
// themes and image URLs that CheckImageURL refuses.
func (s *Settings) Validate() error {
	s.Theme = strings.ToLower(strings.TrimSpace(s.Theme))
	if s.Theme == "" {
		s.Theme = "default"
	}
	s.ProfilePic = strings.TrimSpace(s.ProfilePic)
	s.BackgroundImg = strings.TrimSpace(s.BackgroundImg)

	if err := CheckImageURL(s.ProfilePic); err != nil {
		return fmt.Errorf("profilePic: %w", err)
	}
	if err := CheckImageURL(s.BackgroundImg); err != nil {
		return fmt.Errorf("backgroundImg: %w", err)
	}
	for _, theme := range Themes {
		if s.Theme == theme {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidTheme, s.Theme)
}

// CheckImageURL accepts an empty value, an http(s) URL, a site-relative path
// or a base64 data:image/ URL.
func CheckImageURL(value string) error {
	if value == "" {
		return nil
	}
	if rest, ok := strings.CutPrefix(value, "data:"); ok {
		return checkDataImage(rest)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	switch {
	case parsed.Scheme == "http" || parsed.Scheme == "https":
		if parsed.Host == "" {
			return fmt.Errorf("%w: missing host", ErrInvalidImage)
		}
		return nil
	case parsed.Scheme == "" && parsed.Host == "" && strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//"):
		return nil
	default:
		return fmt.Errorf("%w: unsupported url %q", ErrInvalidImage, truncate(value, 40))
	}
}

func checkDataImage(rest string) error {
	mediaType, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return fmt.Errorf("%w: data url without payload", ErrInvalidImage)
	}
	mime, ok := strings.CutSuffix(strings.ToLower(mediaType), ";base64")
	if !ok || !strings.HasPrefix(mime, "image/") || len(mime) == len("image/") {
		return fmt.Errorf("%w: data url must be a base64 image", ErrInvalidImage)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return fmt.Errorf("%w: bad base64 payload: %v", ErrInvalidImage, err)
	}
	return nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}

type SettingsStore interface {
	GetSettings(ctx context.Context, user string) (Settings, error)
	SaveSettings(ctx context.Context, user string, settings Settings) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, user string) (string, error)
	LookupSession(ctx context.Context, token string) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store, err := newSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func newSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
	user TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GetSettings returns the stored settings for user, or DefaultSettings when
// none were saved. Missing fields in an older payload keep their defaults.
func (s *SQLiteStore) GetSettings(ctx context.Context, user string) (Settings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM user_settings WHERE user = ?;`, normalizeUser(user)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("query settings: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings for %q: %w", user, err)
	}
	if settings.Theme == "" {
		settings.Theme = "default"
	}
	return settings, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, user string, settings Settings) error {
	if normalizeUser(user) == "" {
		return fmt.Errorf("user is required")
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	const upsert = `
INSERT INTO user_settings (user, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(user) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at;`
	if _, err := s.db.ExecContext(ctx, upsert, normalizeUser(user), string(payload), s.now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// CreateSession stores a new random session token for user.
func (s *SQLiteStore) CreateSession(ctx context.Context, user string) (string, error) {
	if normalizeUser(user) == "" {
		return "", fmt.Errorf("user is required")
	}
	token := uuid.NewString()
	const insert = `INSERT INTO sessions (token, user, created_at) VALUES (?, ?, ?);`
	if _, err := s.db.ExecContext(ctx, insert, token, normalizeUser(user), s.now().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

func (s *SQLiteStore) LookupSession(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrSessionNotFound
	}
	var user string
	err := s.db.QueryRowContext(ctx, `SELECT user FROM sessions WHERE token = ?;`, token).Scan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query session: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?;`, strings.TrimSpace(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func normalizeUser(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}
