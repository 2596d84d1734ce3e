package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/repository"
)

// mockAuthRepository хранит пользователей и сессии в памяти.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	profiles     map[uuid.UUID]*models.Profile
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		profiles:     make(map[uuid.UUID]*models.Profile),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	user.ID = uuid.New()
	user.IsActive = true
	user.CreatedAt = time.Now()

	profile.ID = user.ID
	profile.Email = user.Email
	profile.Role = user.Role

	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	m.profiles[user.ID] = profile
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return profile, nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	session, ok := m.sessions[refreshToken]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return session, nil
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockAuthRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	for _, session := range m.sessions {
		if session.UserID == userID {
			sessions = append(sessions, *session)
		}
	}
	return sessions, nil
}

func (m *mockAuthRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	for token, session := range m.sessions {
		if session.ID == sessionID && session.UserID == userID {
			delete(m.sessions, token)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockAuthRepository) DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, exceptRefreshToken string) error {
	for token, session := range m.sessions {
		if session.UserID == userID && token != exceptRefreshToken {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	if user, ok := m.usersByID[userID]; ok {
		user.LastLoginAt = &now
	}
	return nil
}

func newTestAuthService(repo AuthRepository) *AuthService {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	return NewAuthService(repo, tm)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	companyName := "Grünes Berlin GmbH"
	result, err := svc.Register(ctx, RegisterInput{
		Email:       "provider@example.com",
		Password:    "Password123",
		FirstName:   "Anna",
		LastName:    "Schmidt",
		Role:        models.RoleProvider,
		CompanyName: &companyName,
	}, map[string]string{"user_agent": "test-agent", "ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}
	if result.User.Role != models.RoleProvider {
		t.Fatalf("ожидалась роль provider, получили %q", result.User.Role)
	}
	if result.Profile.CompanyName == nil || *result.Profile.CompanyName != companyName {
		t.Fatalf("название компании должно сохраниться для провайдера")
	}
	if result.TokenPair.AccessToken == "" || result.TokenPair.RefreshToken == "" {
		t.Fatalf("регистрация должна вернуть пару токенов")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(repo.sessions))
	}

	// Повторная регистрация того же email отклоняется.
	if _, err := svc.Register(ctx, RegisterInput{
		Email:     "provider@example.com",
		Password:  "Password123",
		FirstName: "Anna",
		LastName:  "Schmidt",
	}, nil); err == nil {
		t.Fatalf("повторная регистрация должна быть отклонена")
	}

	login, err := svc.Login(ctx, LoginInput{Email: "provider@example.com", Password: "Password123"}, nil)
	if err != nil {
		t.Fatalf("вход вернул ошибку: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatalf("вход должен вернуть того же пользователя")
	}
	if login.User.LastLoginAt == nil {
		t.Fatalf("вход должен обновить last_login_at")
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "provider@example.com", Password: "WrongPassword1"}, nil); err == nil {
		t.Fatalf("неверный пароль должен быть отклонён")
	}
}

func TestAuthService_RegisterProviderRequiresCompany(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepository())
	ctx := context.Background()

	// Без названия компании провайдер не регистрируется.
	if _, err := svc.Register(ctx, RegisterInput{
		Email:     "provider@example.com",
		Password:  "Password123",
		FirstName: "Anna",
		LastName:  "Schmidt",
		Role:      models.RoleProvider,
	}, nil); err == nil {
		t.Fatalf("регистрация провайдера без названия компании должна быть отклонена")
	}

	// Пустое название равносильно отсутствию.
	empty := "   "
	if _, err := svc.Register(ctx, RegisterInput{
		Email:       "provider@example.com",
		Password:    "Password123",
		FirstName:   "Anna",
		LastName:    "Schmidt",
		Role:        models.RoleProvider,
		CompanyName: &empty,
	}, nil); err == nil {
		t.Fatalf("пустое название компании должно быть отклонено")
	}

	// Сайт компании проверяется как http(s) адрес.
	companyName := "Grünes Berlin GmbH"
	badSite := "ftp://example.com"
	if _, err := svc.Register(ctx, RegisterInput{
		Email:          "provider@example.com",
		Password:       "Password123",
		FirstName:      "Anna",
		LastName:       "Schmidt",
		Role:           models.RoleProvider,
		CompanyName:    &companyName,
		CompanyWebsite: &badSite,
	}, nil); err == nil {
		t.Fatalf("невалидный сайт компании должен быть отклонён")
	}

	// С названием и валидным сайтом регистрация проходит.
	site := "https://gruenes-berlin.de"
	result, err := svc.Register(ctx, RegisterInput{
		Email:          "provider@example.com",
		Password:       "Password123",
		FirstName:      "Anna",
		LastName:       "Schmidt",
		Role:           models.RoleProvider,
		CompanyName:    &companyName,
		CompanyWebsite: &site,
	}, nil)
	if err != nil {
		t.Fatalf("регистрация провайдера вернула ошибку: %v", err)
	}
	if result.Profile.CompanyName == nil || *result.Profile.CompanyName != companyName {
		t.Fatalf("название компании должно сохраниться в профиле")
	}
}

func TestAuthService_RegisterRejectsAdminRole(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepository())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "admin@example.com",
		Password:  "Password123",
		FirstName: "Max",
		LastName:  "Mustermann",
		Role:      models.RoleAdmin,
	}, nil)
	if err == nil {
		t.Fatalf("регистрация с ролью admin должна быть отклонена")
	}
}

func TestAuthService_RegisterWeakPassword(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepository())

	// Нет заглавной буквы
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:     "user@example.com",
		Password:  "password123",
		FirstName: "Max",
		LastName:  "Mustermann",
	}, nil)
	if err == nil {
		t.Fatalf("слабый пароль должен быть отклонён")
	}
}

func TestAuthService_LoginInactiveUser(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:     "blocked@example.com",
		Password:  "Password123",
		FirstName: "Max",
		LastName:  "Mustermann",
	}, nil)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	repo.usersByID[result.User.ID].IsActive = false

	if _, err := svc.Login(ctx, LoginInput{Email: "blocked@example.com", Password: "Password123"}, nil); err == nil {
		t.Fatalf("вход заблокированного пользователя должен быть отклонён")
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:     "user@example.com",
		Password:  "Password123",
		FirstName: "Max",
		LastName:  "Mustermann",
	}, nil)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	oldToken := result.TokenPair.RefreshToken

	pair, err := svc.Refresh(ctx, oldToken, nil)
	if err != nil {
		t.Fatalf("обновление токенов вернуло ошибку: %v", err)
	}
	if pair.RefreshToken == oldToken {
		t.Fatalf("refresh токен должен смениться")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("старая сессия должна быть заменена новой, получили %d", len(repo.sessions))
	}

	// Использованный токен повторно не принимается.
	if _, err := svc.Refresh(ctx, oldToken, nil); err == nil {
		t.Fatalf("использованный refresh токен должен быть отклонён")
	}

	// Logout удаляет сессию.
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout вернул ошибку: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Fatalf("после logout сессий быть не должно, получили %d", len(repo.sessions))
	}
}

func TestAuthService_SessionManagement(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:     "user@example.com",
		Password:  "Password123",
		FirstName: "Max",
		LastName:  "Mustermann",
	}, map[string]string{"user_agent": "desktop", "ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	// Два дополнительных входа с других устройств.
	if _, err := svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "Password123"}, map[string]string{"user_agent": "mobile", "ip": "10.0.0.2"}); err != nil {
		t.Fatalf("вход вернул ошибку: %v", err)
	}
	tablet, err := svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "Password123"}, map[string]string{"user_agent": "tablet", "ip": "10.0.0.3"})
	if err != nil {
		t.Fatalf("вход вернул ошибку: %v", err)
	}

	sessions, err := svc.ListSessions(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("список сессий вернул ошибку: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("ожидалось три сессии, получили %d", len(sessions))
	}

	// Отзыв одной сессии по идентификатору.
	if err := svc.DeleteSession(ctx, sessions[0].ID, result.User.ID); err != nil {
		t.Fatalf("отзыв сессии вернул ошибку: %v", err)
	}
	if len(repo.sessions) != 2 {
		t.Fatalf("после отзыва ожидалось две сессии, получили %d", len(repo.sessions))
	}

	// Чужую сессию отозвать нельзя.
	remaining, _ := svc.ListSessions(ctx, result.User.ID)
	if err := svc.DeleteSession(ctx, remaining[0].ID, uuid.New()); err == nil {
		t.Fatalf("отзыв чужой сессии должен быть отклонён")
	}

	// Отзыв всех сессий кроме текущей.
	if err := svc.DeleteAllSessionsExcept(ctx, result.User.ID, tablet.TokenPair.RefreshToken); err != nil {
		t.Fatalf("массовый отзыв вернул ошибку: %v", err)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("должна остаться только текущая сессия, получили %d", len(repo.sessions))
	}
	if _, ok := repo.sessions[tablet.TokenPair.RefreshToken]; !ok {
		t.Fatalf("текущая сессия не должна быть отозвана")
	}
}
