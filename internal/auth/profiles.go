package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taba-id/taba/internal/rbac"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUnknownRole     = errors.New("unknown role")
)

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileStore keeps accounts in the profiles table.
type ProfileStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db, now: time.Now}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

const profileCols = `id,email,full_name,avatar_url,role,created_at,updated_at`

func scanProfile(sc interface{ Scan(...any) error }, extra ...any) (Profile, error) {
	var (
		p      Profile
		cr, up int64
	)
	dst := append([]any{&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.Role, &cr, &up}, extra...)
	if err := sc.Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	p.CreatedAt, p.UpdatedAt = time.Unix(cr, 0).UTC(), time.Unix(up, 0).UTC()
	return p, nil
}

func (s *ProfileStore) Create(ctx context.Context, email, passHash, fullName, role string) (Profile, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = rbac.RoleLearner
	}
	if _, _, err := s.GetByEmail(ctx, email); err == nil {
		return Profile{}, ErrEmailTaken
	} else if !errors.Is(err, ErrProfileNotFound) {
		return Profile{}, err
	}
	now := s.now().UTC().Truncate(time.Second)
	p := Profile{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  strings.TrimSpace(fullName),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO profiles
		(id,email,password_hash,full_name,avatar_url,role,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Email, passHash, p.FullName, p.AvatarURL, p.Role, now.Unix(), now.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return Profile{}, ErrEmailTaken
		}
		return Profile{}, err
	}
	return p, nil
}

// GetByEmail returns the profile and its password hash.
func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (Profile, string, error) {
	var hash string
	p, err := scanProfile(s.db.QueryRowContext(ctx,
		`SELECT `+profileCols+`,password_hash FROM profiles WHERE email=$1`, normalizeEmail(email)), &hash)
	if err != nil {
		return Profile{}, "", err
	}
	return p, hash, nil
}

func (s *ProfileStore) Get(ctx context.Context, id string) (Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profiles WHERE id=$1`, id))
}

// ProfilePatch holds the editable fields; nil leaves a field unchanged.
type ProfilePatch struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

func (s *ProfileStore) Update(ctx context.Context, id string, patch ProfilePatch) (Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if patch.FullName != nil {
		p.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*patch.AvatarURL)
	}
	p.UpdatedAt = s.now().UTC().Truncate(time.Second)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET full_name=$1, avatar_url=$2, updated_at=$3 WHERE id=$4`,
		p.FullName, p.AvatarURL, p.UpdatedAt.Unix(), id); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Role implements RoleSource.
func (s *ProfileStore) Role(ctx context.Context, id string) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM profiles WHERE id=$1`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrProfileNotFound
	}
	return role, err
}

// SetRole changes a user's role. Unknown roles are rejected.
func (s *ProfileStore) SetRole(ctx context.Context, id, role string) error {
	if _, ok := rbac.RolePermissions[role]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownRole, role)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET role=$1, updated_at=$2 WHERE id=$3`,
		role, s.now().Unix(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account if no profile uses email.
// passHash must already be a bcrypt hash.
func (s *ProfileStore) EnsureAdmin(ctx context.Context, email, passHash string) (bool, error) {
	if email == "" || passHash == "" {
		return false, nil
	}
	_, err := s.Create(ctx, email, passHash, "Administrator", rbac.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	return err == nil, err
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
