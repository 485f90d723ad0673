package localstate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/qubitgyan-student/internal/clients/lms"
	"github.com/yungbote/qubitgyan-student/internal/platform/logger"
)

type TokenRepo interface {
	Save(ctx context.Context, username, access, refresh string) (*StoredToken, error)
	Get(ctx context.Context, username string) (*StoredToken, error)
	Delete(ctx context.Context, username string) error
	// Source adapts a saved login to lms.TokenSource.
	Source(username string) lms.TokenSource
}

type tokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewTokenRepo(db *gorm.DB, baseLog *logger.Logger) TokenRepo {
	return &tokenRepo{db: db, log: baseLog.With("repo", "TokenRepo"), now: time.Now}
}

func (r *tokenRepo) Save(ctx context.Context, username, access, refresh string) (*StoredToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || access == "" {
		return nil, fmt.Errorf("username and access token required")
	}
	row := &StoredToken{
		Username:  username,
		Access:    access,
		Refresh:   refresh,
		UpdatedAt: r.now().UTC(),
	}
	if claims, err := lms.ParseClaims(access); err == nil {
		row.ExpiresAt = claims.ExpiresAt
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"access", "refresh", "expires_at", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *tokenRepo) Get(ctx context.Context, username string) (*StoredToken, error) {
	var row StoredToken
	err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepo) Delete(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).Delete(&StoredToken{}).Error
}

func (r *tokenRepo) Source(username string) lms.TokenSource {
	return storedTokenSource{repo: r, username: username}
}

type storedTokenSource struct {
	repo     *tokenRepo
	username string
}

func (s storedTokenSource) Token(ctx context.Context) (string, error) {
	row, err := s.repo.Get(ctx, s.username)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", lms.ErrNoToken
	}
	if !row.ExpiresAt.IsZero() && !row.ExpiresAt.After(s.repo.now()) {
		return "", fmt.Errorf("saved login for %q expired: %w", s.username, lms.ErrNoToken)
	}
	return row.Access, nil
}
