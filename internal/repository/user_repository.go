package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
	"github.com/dedicate-place/backend/internal/repository/common"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// ErrProfileNotFound возвращается, когда профиль не найден.
var ErrProfileNotFound = errors.New("profile not found")

// UserRepository отвечает за работу с таблицами users, profiles и user_sessions.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт учётную запись и профиль в одной транзакции.
// Профиль использует тот же идентификатор, что и учётная запись.
func (r *UserRepository) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		userQuery := `
			INSERT INTO users (email, password_hash, role, is_active)
			VALUES ($1, $2, $3, TRUE)
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, userQuery,
			user.Email, user.PasswordHash, user.Role,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return fmt.Errorf("user repository: create user %w", err)
		}

		profile.ID = user.ID
		profile.Email = user.Email
		profile.Role = user.Role

		profileQuery := `
			INSERT INTO profiles (id, first_name, last_name, email, role, company_name, company_website, guardian_area, guardian_phone)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, profileQuery,
			profile.ID, profile.FirstName, profile.LastName, profile.Email, profile.Role,
			profile.CompanyName, profile.CompanyWebsite, profile.GuardianArea, profile.GuardianPhone,
		).Scan(&profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return fmt.Errorf("user repository: create profile %w", err)
		}

		return nil
	})
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, password_hash, role, is_active, last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}

	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
}

// GetProfile возвращает профиль пользователя.
func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return common.GetByID[models.Profile](ctx, r.db, "profiles", userID, ErrProfileNotFound)
}

// UpdateProfile обновляет поля профиля. Роль меняется отдельным методом.
func (r *UserRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $2,
			last_name = $3,
			company_name = $4,
			company_website = $5,
			guardian_area = $6,
			guardian_phone = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		profile.ID, profile.FirstName, profile.LastName,
		profile.CompanyName, profile.CompanyWebsite,
		profile.GuardianArea, profile.GuardianPhone,
	).Scan(&profile.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}

	return nil
}

// UpdateRole меняет роль в учётной записи и профиле одновременно.
func (r *UserRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, userID, role)
		if err != nil {
			return fmt.Errorf("user repository: update user role %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("user repository: update role rows affected %w", err)
		}
		if affected == 0 {
			return ErrUserNotFound
		}

		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1`, userID, role); err != nil {
			return fmt.Errorf("user repository: update profile role %w", err)
		}

		return nil
	})
}

// Delete удаляет учётную запись. Профиль и сессии удаляются каскадом.
func (r *UserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListProfiles возвращает страницу профилей для админского списка пользователей.
// Поиск идёт по имени, фамилии и email, фильтр role сужает выборку по роли.
// Подсчёт и выборка выполняются в одной транзакции, чтобы метаданные
// пагинации соответствовали именно возвращённой странице.
func (r *UserRepository) ListProfiles(ctx context.Context, params pagination.Request) ([]models.Profile, int, error) {
	params = params.Normalized()

	query := `
		SELECT id, first_name, last_name, email, role, company_name, company_website, guardian_area, guardian_phone, created_at, updated_at
		FROM profiles
		WHERE 1=1
	`
	countQuery := `SELECT COUNT(*) FROM profiles WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	// Поиск по тексту
	if params.Search != "" {
		clause := fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", argIndex, argIndex, argIndex)
		query += clause
		countQuery += clause
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	// Фильтр по роли
	if role, ok := params.ActiveFilters()["role"]; ok {
		clause := fmt.Sprintf(" AND role = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, role)
		argIndex++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)

	var (
		profiles []models.Profile
		total    int
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, countQuery, args...); err != nil {
			return fmt.Errorf("user repository: count profiles %w", err)
		}

		pageArgs := append(args, params.RowsPerPage, params.Offset())
		if err := tx.SelectContext(ctx, &profiles, query, pageArgs...); err != nil {
			return fmt.Errorf("user repository: list profiles %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

// CreateSession сохраняет refresh-сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		session.UserID,
		session.RefreshToken,
		session.UserAgent,
		session.IPAddress,
		session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}

	return nil
}

// GetSession возвращает активную сессию по refresh токену.
func (r *UserRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE refresh_token = $1 AND expires_at > NOW()
	`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}

	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}

	return nil
}

// ListSessions возвращает активные сессии пользователя.
func (r *UserRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("user repository: list sessions %w", err)
	}

	return sessions, nil
}

// DeleteSessionByID удаляет сессию пользователя по идентификатору.
func (r *UserRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("user repository: delete session by id %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: delete session by id rows affected %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user repository: session not found")
	}

	return nil
}

// DeleteAllSessionsExcept удаляет все сессии пользователя кроме текущей.
func (r *UserRepository) DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, exceptRefreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE user_id = $1 AND refresh_token != $2`, userID, exceptRefreshToken); err != nil {
		return fmt.Errorf("user repository: delete all sessions except %w", err)
	}

	return nil
}

// UpdateLastLoginAt обновляет время последнего входа пользователя.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("user repository: update last login at %w", err)
	}

	return nil
}
