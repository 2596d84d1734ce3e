package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
	"github.com/dedicate-place/backend/internal/pkg/apperror"
	"github.com/dedicate-place/backend/internal/repository"
)

// mockObjectRepository хранит объекты в памяти и считает обращения к Stats.
// Пересчёт статистики выполняется в отдельной горутине, поэтому доступ под мьютексом.
type mockObjectRepository struct {
	mu         sync.Mutex
	objects    map[int64]*models.Object
	nextID     int64
	statsCalls int
}

func newMockObjectRepository() *mockObjectRepository {
	return &mockObjectRepository{objects: make(map[int64]*models.Object)}
}

func (m *mockObjectRepository) Create(ctx context.Context, object *models.Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	object.ID = m.nextID
	object.CreatedAt = time.Now()
	m.objects[object.ID] = object
	return nil
}

func (m *mockObjectRepository) GetByID(ctx context.Context, id int64) (*models.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	object, ok := m.objects[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	copied := *object
	return &copied, nil
}

func (m *mockObjectRepository) Update(ctx context.Context, object *models.Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[object.ID]; !ok {
		return repository.ErrObjectNotFound
	}
	m.objects[object.ID] = object
	return nil
}

func (m *mockObjectRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	object, ok := m.objects[id]
	if !ok {
		return repository.ErrObjectNotFound
	}
	object.Status = status
	return nil
}

func (m *mockObjectRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id]; !ok {
		return repository.ErrObjectNotFound
	}
	delete(m.objects, id)
	return nil
}

func (m *mockObjectRepository) List(ctx context.Context, params repository.ObjectListParams) ([]models.Object, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Object
	for _, object := range m.objects {
		if params.ProviderID != nil && object.ProviderID != *params.ProviderID {
			continue
		}
		if params.PublicOnly && object.Status == models.ObjectStatusUnavailable {
			continue
		}
		result = append(result, *object)
	}
	return result, len(result), nil
}

func (m *mockObjectRepository) Stats(ctx context.Context) (*models.ObjectStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	stats := &models.ObjectStats{Total: len(m.objects)}
	for _, object := range m.objects {
		if object.Status == models.ObjectStatusAvailable {
			stats.Available++
		}
	}
	return stats, nil
}

func (m *mockObjectRepository) statsCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsCalls
}

func benchForm() *dto.ObjectForm {
	return &dto.ObjectForm{
		TitleDE: "Bank am See",
		Type:    models.ObjectTypeBench,
	}
}

func TestObjectService_CreateAndValidate(t *testing.T) {
	repo := newMockObjectRepository()
	svc := NewObjectService(repo)
	defer svc.Close()
	ctx := context.Background()
	providerID := uuid.New()

	object, err := svc.Create(ctx, providerID, benchForm())
	if err != nil {
		t.Fatalf("создание вернуло ошибку: %v", err)
	}
	if object.ID == 0 {
		t.Fatalf("объекту должен быть присвоен идентификатор")
	}
	if object.Status != models.ObjectStatusAvailable {
		t.Fatalf("статус по умолчанию должен быть available, получили %q", object.Status)
	}

	// Без названия хотя бы на одном языке
	form := benchForm()
	form.TitleDE = ""
	if _, err := svc.Create(ctx, providerID, form); !apperror.IsValidation(err) {
		t.Fatalf("форма без названия должна быть отклонена, получили %v", err)
	}

	// Произвольный тип без названия типа
	form = benchForm()
	form.Type = models.ObjectTypeCustom
	if _, err := svc.Create(ctx, providerID, form); !apperror.IsValidation(err) {
		t.Fatalf("произвольный тип без названия должен быть отклонён, получили %v", err)
	}

	// Широта вне диапазона
	form = benchForm()
	badLat := 120.0
	form.Latitude = dto.NullableFloat64{Value: &badLat}
	if _, err := svc.Create(ctx, providerID, form); !apperror.IsValidation(err) {
		t.Fatalf("широта 120 должна быть отклонена, получили %v", err)
	}

	// Лимит таблички без разрешённой таблички
	form = benchForm()
	limit := int64(120)
	form.PlaqueMaxChars = dto.NullableInt64{Value: &limit}
	if _, err := svc.Create(ctx, providerID, form); !apperror.IsValidation(err) {
		t.Fatalf("лимит без таблички должен быть отклонён, получили %v", err)
	}
}

func TestObjectService_PlaqueLimitDroppedWhenNotAllowed(t *testing.T) {
	repo := newMockObjectRepository()
	svc := NewObjectService(repo)
	defer svc.Close()

	form := benchForm()
	form.PlaqueAllowed = false

	object, err := svc.Create(context.Background(), uuid.New(), form)
	if err != nil {
		t.Fatalf("создание вернуло ошибку: %v", err)
	}
	if object.PlaqueMaxChars != nil {
		t.Fatalf("лимит таблички без разрешения должен быть nil")
	}
}

func TestObjectService_OwnershipChecks(t *testing.T) {
	repo := newMockObjectRepository()
	svc := NewObjectService(repo)
	defer svc.Close()
	ctx := context.Background()

	ownerID := uuid.New()
	strangerID := uuid.New()

	object, err := svc.Create(ctx, ownerID, benchForm())
	if err != nil {
		t.Fatalf("создание вернуло ошибку: %v", err)
	}

	// Чужой провайдер не может редактировать
	if _, err := svc.Update(ctx, strangerID, models.RoleProvider, object.ID, benchForm()); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("чужой провайдер должен получить ErrForbidden, получили %v", err)
	}
	if err := svc.UpdateStatus(ctx, strangerID, models.RoleProvider, object.ID, models.ObjectStatusUnavailable); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("чужой провайдер должен получить ErrForbidden, получили %v", err)
	}
	if err := svc.Delete(ctx, strangerID, models.RoleProvider, object.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("чужой провайдер должен получить ErrForbidden, получили %v", err)
	}

	// Владелец редактирует свой объект
	if err := svc.UpdateStatus(ctx, ownerID, models.RoleProvider, object.ID, models.ObjectStatusReserved); err != nil {
		t.Fatalf("владелец должен менять статус: %v", err)
	}

	// Админ редактирует любой объект
	if err := svc.Delete(ctx, strangerID, models.RoleAdmin, object.ID); err != nil {
		t.Fatalf("админ должен удалять любой объект: %v", err)
	}

	if _, err := svc.GetByID(ctx, object.ID); !errors.Is(err, apperror.ErrObjectNotFound) {
		t.Fatalf("удалённый объект должен давать ErrObjectNotFound, получили %v", err)
	}
}

func TestObjectService_ListPublicHidesUnavailable(t *testing.T) {
	repo := newMockObjectRepository()
	svc := NewObjectService(repo)
	defer svc.Close()
	ctx := context.Background()
	providerID := uuid.New()

	if _, err := svc.Create(ctx, providerID, benchForm()); err != nil {
		t.Fatalf("создание вернуло ошибку: %v", err)
	}
	hidden := benchForm()
	hidden.Status = models.ObjectStatusUnavailable
	if _, err := svc.Create(ctx, providerID, hidden); err != nil {
		t.Fatalf("создание вернуло ошибку: %v", err)
	}

	objects, meta, err := svc.ListPublic(ctx, pagination.Request{Page: 1, RowsPerPage: 10})
	if err != nil {
		t.Fatalf("список вернул ошибку: %v", err)
	}
	if len(objects) != 1 || meta.TotalCount != 1 {
		t.Fatalf("публичный список должен скрывать unavailable, получили %d/%d", len(objects), meta.TotalCount)
	}

	all, meta, err := svc.ListAll(ctx, pagination.Request{Page: 1, RowsPerPage: 10})
	if err != nil {
		t.Fatalf("список вернул ошибку: %v", err)
	}
	if len(all) != 2 || meta.TotalCount != 2 {
		t.Fatalf("админский список должен видеть всё, получили %d/%d", len(all), meta.TotalCount)
	}
}

func TestObjectService_StatsDebounced(t *testing.T) {
	repo := newMockObjectRepository()
	svc := NewObjectService(repo)
	defer svc.Close()
	ctx := context.Background()
	providerID := uuid.New()

	// Всплеск изменений в пределах окна дебаунса
	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, providerID, benchForm()); err != nil {
			t.Fatalf("создание вернуло ошибку: %v", err)
		}
	}

	// Ждём срабатывания отложенного пересчёта
	deadline := time.After(2 * time.Second)
	for repo.statsCallCount() == 0 {
		select {
		case <-deadline:
			t.Fatalf("пересчёт статистики так и не выполнился")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := repo.statsCallCount(); got != 1 {
		t.Fatalf("всплеск изменений должен дать один пересчёт, получили %d", got)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("статистика вернула ошибку: %v", err)
	}
	if stats.Total != 5 || stats.Available != 5 {
		t.Fatalf("ожидалось 5/5, получили %d/%d", stats.Total, stats.Available)
	}
}
