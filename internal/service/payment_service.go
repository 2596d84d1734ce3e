package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/logger"
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/paymentflow"
	"github.com/dedicate-place/backend/internal/pkg/apperror"
	"github.com/dedicate-place/backend/internal/repository"
)

// PaymentRepositoryIface описывает зависимости PaymentService от слоя хранилища.
type PaymentRepositoryIface interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorCode *string) error
}

// PaymentObjectRepository нужен сервису для проверки объекта перед оплатой.
type PaymentObjectRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Object, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// PaymentService ведёт платёжные сценарии спонсорства.
// Каждому платежу соответствует свой конечный автомат; автоматы живут в
// памяти процесса, а их итоги фиксируются в таблице payments. После
// перезапуска сценарий восстанавливается из сохранённого intent.
type PaymentService struct {
	repo      PaymentRepositoryIface
	objects   PaymentObjectRepository
	provider  paymentflow.Provider
	currency  string
	returnURL string

	mu    sync.Mutex
	flows map[uuid.UUID]*paymentflow.Flow
}

// NewPaymentService создаёт платёжный сервис. appURL - базовый адрес
// приложения, из него собирается return URL по умолчанию.
func NewPaymentService(repo PaymentRepositoryIface, objects PaymentObjectRepository, provider paymentflow.Provider, currency, appURL string) *PaymentService {
	return &PaymentService{
		repo:      repo,
		objects:   objects,
		provider:  provider,
		currency:  currency,
		returnURL: strings.TrimRight(appURL, "/") + "/payment/success",
		flows:     make(map[uuid.UUID]*paymentflow.Flow),
	}
}

// CreateIntent запускает платёжный сценарий: проверяет объект, создаёт intent
// у провайдера и сохраняет платёж со статусом form_ready.
func (s *PaymentService) CreateIntent(ctx context.Context, objectID int64, amount float64) (*models.Payment, error) {
	if amount <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма должна быть больше нуля")
	}

	object, err := s.objects.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperror.ErrObjectNotFound
		}
		return nil, err
	}

	if object.Status != models.ObjectStatusAvailable {
		return nil, apperror.New(apperror.ErrCodeConflict, "объект недоступен для спонсорства")
	}

	// Цена объекта первична: клиентская сумма не может её подменить
	if object.Price != nil && amount != *object.Price {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма не совпадает с ценой объекта")
	}

	flow := paymentflow.New(s.provider)

	intent, err := flow.Start(ctx, amount, s.currency, objectID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodePayment, "не удалось создать платёж")
	}

	payment := &models.Payment{
		ObjectID:         objectID,
		Amount:           amount,
		Currency:         s.currency,
		ProviderIntentID: &intent.ID,
		ClientSecret:     &intent.ClientSecret,
		Status:           models.PaymentStatusFormReady,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.flows[payment.ID] = flow
	s.mu.Unlock()

	return payment, nil
}

// Confirm подтверждает платёж. На одно обращение приходится ровно один вызов
// провайдера; ошибка подтверждения оставляет платёж в form_ready для
// повторной попытки. Пустой returnURL заменяется адресом страницы успеха
// приложения.
func (s *PaymentService) Confirm(ctx context.Context, paymentID uuid.UUID, returnURL string) (*models.Payment, error) {
	if returnURL == "" {
		returnURL = s.returnURL
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}

	flow, err := s.flowFor(payment)
	if err != nil {
		return nil, err
	}

	confirmErr := flow.Confirm(ctx, returnURL)

	switch flow.State() {
	case paymentflow.StateSettled:
		status := models.PaymentStatusFailed
		var errCode *string
		if flow.Outcome() == paymentflow.OutcomeSucceeded {
			status = models.PaymentStatusSucceeded
		} else if code := flow.LastErrorCode(); code != "" {
			errCode = &code
		}
		if err := s.repo.UpdateStatus(ctx, payment.ID, status, errCode); err != nil {
			return nil, err
		}
		payment.Status = status
		payment.ErrorCode = errCode

		// Завершённый автомат больше не нужен, держать его в памяти незачем
		s.dropFlow(payment.ID)

		if status == models.PaymentStatusSucceeded {
			s.reserveObject(ctx, payment.ObjectID)
		}
	case paymentflow.StateFormReady:
		// Платёж остаётся доступным для повторного подтверждения
		code := flow.LastErrorCode()
		if err := s.repo.UpdateStatus(ctx, payment.ID, models.PaymentStatusFormReady, &code); err != nil {
			return nil, err
		}
		payment.Status = models.PaymentStatusFormReady
		payment.ErrorCode = &code
	}

	if confirmErr != nil {
		if errors.Is(confirmErr, paymentflow.ErrConfirmPending) {
			return nil, apperror.New(apperror.ErrCodeConflict, "подтверждение уже выполняется")
		}
		if errors.Is(confirmErr, paymentflow.ErrAlreadySettled) {
			return nil, apperror.New(apperror.ErrCodeConflict, "платёж уже завершён")
		}
		return payment, apperror.Wrap(confirmErr, apperror.ErrCodePayment, "платёж не прошёл")
	}

	return payment, nil
}

// GetByID возвращает платёж.
func (s *PaymentService) GetByID(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// HandleIntentSucceeded фиксирует успех платежа по событию вебхука.
func (s *PaymentService) HandleIntentSucceeded(ctx context.Context, intentID string) error {
	payment, err := s.repo.GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			// Вебхук может прийти по чужому intent, это не ошибка обработки
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusSucceeded {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, payment.ID, models.PaymentStatusSucceeded, nil); err != nil {
		return err
	}

	s.dropFlow(payment.ID)
	s.reserveObject(ctx, payment.ObjectID)
	return nil
}

// HandleIntentFailed фиксирует неуспех платежа по событию вебхука.
func (s *PaymentService) HandleIntentFailed(ctx context.Context, intentID string) error {
	payment, err := s.repo.GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusSucceeded || payment.Status == models.PaymentStatusFailed {
		return nil
	}

	s.dropFlow(payment.ID)

	code := "webhook_failed"
	return s.repo.UpdateStatus(ctx, payment.ID, models.PaymentStatusFailed, &code)
}

// flowFor возвращает автомат платежа, восстанавливая его при необходимости.
func (s *PaymentService) flowFor(payment *models.Payment) (*paymentflow.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if flow, ok := s.flows[payment.ID]; ok {
		return flow, nil
	}

	if payment.Status != models.PaymentStatusFormReady {
		return nil, apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("платёж в статусе %s нельзя подтвердить", payment.Status))
	}
	if payment.ProviderIntentID == nil || payment.ClientSecret == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "у платежа нет intent")
	}

	flow := paymentflow.Resume(s.provider, &paymentflow.Intent{
		ID:           *payment.ProviderIntentID,
		ClientSecret: *payment.ClientSecret,
	})
	s.flows[payment.ID] = flow

	return flow, nil
}

// dropFlow удаляет завершённый автомат из памяти.
func (s *PaymentService) dropFlow(paymentID uuid.UUID) {
	s.mu.Lock()
	delete(s.flows, paymentID)
	s.mu.Unlock()
}

// reserveObject переводит оплаченный объект в статус reserved.
func (s *PaymentService) reserveObject(ctx context.Context, objectID int64) {
	if err := s.objects.UpdateStatus(ctx, objectID, models.ObjectStatusReserved); err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"object_id": objectID,
				"error":     err.Error(),
			}).Warn("payment service: не удалось зарезервировать объект")
		}
	}
}
