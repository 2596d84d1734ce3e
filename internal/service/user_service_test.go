package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
	"github.com/dedicate-place/backend/internal/pkg/apperror"
	"github.com/dedicate-place/backend/internal/repository"
)

// mockUserRepository хранит пользователей и профили в памяти.
type mockUserRepository struct {
	users    map[uuid.UUID]*models.User
	profiles map[uuid.UUID]*models.Profile
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:    make(map[uuid.UUID]*models.User),
		profiles: make(map[uuid.UUID]*models.Profile),
	}
}

func (m *mockUserRepository) addUser(role string) uuid.UUID {
	id := uuid.New()
	m.users[id] = &models.User{ID: id, Role: role, IsActive: true}
	m.profiles[id] = &models.Profile{ID: id, FirstName: "Max", LastName: "Mustermann", Role: role}
	return id
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	if _, ok := m.profiles[profile.ID]; !ok {
		return repository.ErrProfileNotFound
	}
	copied := *profile
	m.profiles[profile.ID] = &copied
	return nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	user, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Role = role
	m.profiles[userID].Role = role
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, ok := m.users[userID]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, userID)
	delete(m.profiles, userID)
	return nil
}

func (m *mockUserRepository) ListProfiles(ctx context.Context, params pagination.Request) ([]models.Profile, int, error) {
	role := params.ActiveFilters()["role"]
	var result []models.Profile
	for _, profile := range m.profiles {
		if role != "" && profile.Role != role {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(profile.FirstName), strings.ToLower(params.Search)) {
			continue
		}
		result = append(result, *profile)
	}
	return result, len(result), nil
}

func TestUserService_UpdateProfileAccess(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	userID := repo.addUser(models.RoleUser)
	strangerID := repo.addUser(models.RoleUser)
	adminID := repo.addUser(models.RoleAdmin)

	// Чужой профиль закрыт для обычного пользователя.
	if _, err := svc.UpdateProfile(ctx, strangerID, models.RoleUser, userID, &dto.ProfileUpdateForm{FirstName: "Eva"}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("чужой профиль должен быть закрыт, получили %v", err)
	}

	// Свой профиль доступен.
	profile, err := svc.UpdateProfile(ctx, userID, models.RoleUser, userID, &dto.ProfileUpdateForm{FirstName: "Eva"})
	if err != nil {
		t.Fatalf("обновление своего профиля вернуло ошибку: %v", err)
	}
	if profile.FirstName != "Eva" {
		t.Fatalf("имя должно обновиться, получили %q", profile.FirstName)
	}

	// Админ правит любой профиль.
	if _, err := svc.UpdateProfile(ctx, adminID, models.RoleAdmin, userID, &dto.ProfileUpdateForm{LastName: "Schmidt"}); err != nil {
		t.Fatalf("админ должен редактировать любой профиль: %v", err)
	}

	// Однобуквенное имя отклоняется.
	if _, err := svc.UpdateProfile(ctx, userID, models.RoleUser, userID, &dto.ProfileUpdateForm{FirstName: "A"}); !apperror.IsValidation(err) {
		t.Fatalf("слишком короткое имя должно быть отклонено, получили %v", err)
	}
}

func TestUserService_RoleChangeOnlyByAdmin(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	userID := repo.addUser(models.RoleUser)
	adminID := repo.addUser(models.RoleAdmin)

	// Пользователь не может сменить себе роль. Остальные поля запрещённой
	// формы тоже не сохраняются.
	if _, err := svc.UpdateProfile(ctx, userID, models.RoleUser, userID, &dto.ProfileUpdateForm{FirstName: "Eva", Role: models.RoleProvider}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("смена роли пользователем должна быть отклонена, получили %v", err)
	}
	if repo.profiles[userID].FirstName != "Max" {
		t.Fatalf("отклонённая форма не должна сохранять поля, получили %q", repo.profiles[userID].FirstName)
	}

	// Админ меняет роль.
	profile, err := svc.UpdateProfile(ctx, adminID, models.RoleAdmin, userID, &dto.ProfileUpdateForm{Role: models.RoleGuardian})
	if err != nil {
		t.Fatalf("смена роли админом вернула ошибку: %v", err)
	}
	if profile.Role != models.RoleGuardian {
		t.Fatalf("роль должна смениться на guardian, получили %q", profile.Role)
	}
	if repo.users[userID].Role != models.RoleGuardian {
		t.Fatalf("роль учётной записи должна обновиться вместе с профилем")
	}

	// Несуществующая роль отклоняется.
	if _, err := svc.UpdateProfile(ctx, adminID, models.RoleAdmin, userID, &dto.ProfileUpdateForm{Role: "superuser"}); !apperror.IsValidation(err) {
		t.Fatalf("несуществующая роль должна быть отклонена, получили %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	userID := repo.addUser(models.RoleUser)
	adminID := repo.addUser(models.RoleAdmin)

	// Админ не может удалить самого себя.
	if err := svc.Delete(ctx, adminID, adminID); err == nil {
		t.Fatalf("удаление собственной учётной записи должно быть отклонено")
	}

	if err := svc.Delete(ctx, adminID, userID); err != nil {
		t.Fatalf("удаление пользователя вернуло ошибку: %v", err)
	}
	if _, err := svc.GetProfile(ctx, userID); !errors.Is(err, apperror.ErrUserNotFound) {
		t.Fatalf("удалённый профиль должен давать ErrUserNotFound, получили %v", err)
	}

	if err := svc.Delete(ctx, adminID, uuid.New()); !errors.Is(err, apperror.ErrUserNotFound) {
		t.Fatalf("удаление несуществующего пользователя должно давать ErrUserNotFound, получили %v", err)
	}
}

func TestUserService_ListFiltersByRole(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	repo.addUser(models.RoleGuardian)
	repo.addUser(models.RoleGuardian)
	repo.addUser(models.RoleProvider)

	page := pagination.Request{
		Page:        1,
		RowsPerPage: 10,
		Filters:     map[string]string{"role": models.RoleGuardian},
	}

	profiles, meta, err := svc.List(ctx, page)
	if err != nil {
		t.Fatalf("список вернул ошибку: %v", err)
	}
	if len(profiles) != 2 || meta.TotalCount != 2 {
		t.Fatalf("фильтр по роли должен оставить двух хранителей, получили %d", len(profiles))
	}

	// Значение "all" отключает фильтр.
	page.Filters = map[string]string{"role": pagination.FilterAll}
	profiles, meta, err = svc.List(ctx, page)
	if err != nil {
		t.Fatalf("список вернул ошибку: %v", err)
	}
	if len(profiles) != 3 || meta.TotalCount != 3 {
		t.Fatalf("фильтр all должен вернуть всех, получили %d", len(profiles))
	}
}
