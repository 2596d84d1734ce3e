package paymentflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Пакет paymentflow реализует сценарий оплаты как конечный автомат.
// Переходы:
//
//	Idle -> IntentRequested -> FormReady -> ConfirmPending -> Settled
//
// Ошибка подтверждения не фатальна: автомат возвращается в FormReady,
// пользователь может исправить данные и подтвердить снова. Терминальна
// только неудача на создании intent и финальный вердикт провайдера
// (вебхук payment_intent.payment_failed).

// State - состояние платёжного сценария.
type State string

const (
	StateIdle            State = "idle"
	StateIntentRequested State = "intent_requested"
	StateFormReady       State = "form_ready"
	StateConfirmPending  State = "confirm_pending"
	StateSettled         State = "settled"
)

// Outcome - итог завершённого сценария.
type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Категории ошибок платёжного провайдера.
const (
	CategoryCard         = "card_error"
	CategoryValidation   = "validation_error"
	CategoryUnclassified = "unclassified"
)

// Error - классифицированная ошибка провайдера.
type Error struct {
	Category string
	Code     string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Category, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Category, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Intent - созданный у провайдера платёжный intent.
type Intent struct {
	ID           string
	ClientSecret string
}

// Provider - операции платёжного провайдера, нужные сценарию.
type Provider interface {
	CreateIntent(ctx context.Context, amount float64, currency string, objectID int64) (*Intent, error)
	ConfirmIntent(ctx context.Context, intentID, returnURL string) error
}

// Ошибки переходов.
var (
	ErrNotReady       = errors.New("payment flow: форма ещё не готова")
	ErrConfirmPending = errors.New("payment flow: подтверждение уже выполняется")
	ErrAlreadySettled = errors.New("payment flow: сценарий уже завершён")
	ErrAlreadyStarted = errors.New("payment flow: сценарий уже запущен")
)

// Flow - платёжный сценарий одного платежа.
type Flow struct {
	mu       sync.Mutex
	state    State
	provider Provider
	intent   *Intent
	outcome  Outcome
	lastCode string
}

// New создаёт сценарий в состоянии Idle.
func New(provider Provider) *Flow {
	return &Flow{
		state:    StateIdle,
		provider: provider,
	}
}

// Resume восстанавливает сценарий с уже созданным intent в состоянии FormReady.
// Используется, когда процесс перезапустился между созданием intent и
// подтверждением.
func Resume(provider Provider, intent *Intent) *Flow {
	return &Flow{
		state:    StateFormReady,
		provider: provider,
		intent:   intent,
	}
}

// State возвращает текущее состояние.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Outcome возвращает итог завершённого сценария.
func (f *Flow) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome
}

// Intent возвращает созданный intent, либо nil до запуска.
func (f *Flow) Intent() *Intent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intent
}

// LastErrorCode возвращает код последней ошибки подтверждения.
func (f *Flow) LastErrorCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCode
}

// Start запрашивает intent у провайдера и переводит сценарий в FormReady.
// Повторный запуск уже запущенного сценария запрещён.
func (f *Flow) Start(ctx context.Context, amount float64, currency string, objectID int64) (*Intent, error) {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	f.state = StateIntentRequested
	f.mu.Unlock()

	intent, err := f.provider.CreateIntent(ctx, amount, currency, objectID)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		// Неудача на создании intent завершает сценарий сразу.
		f.state = StateSettled
		f.outcome = OutcomeFailed
		f.lastCode = errorCode(err)
		return nil, err
	}

	f.intent = intent
	f.state = StateFormReady
	return intent, nil
}

// Confirm подтверждает платёж. На одно обращение приходится ровно один вызов
// ConfirmIntent у провайдера. Пока подтверждение выполняется, повторные
// обращения отклоняются, а не ставятся в очередь.
func (f *Flow) Confirm(ctx context.Context, returnURL string) error {
	f.mu.Lock()
	switch f.state {
	case StateConfirmPending:
		f.mu.Unlock()
		return ErrConfirmPending
	case StateSettled:
		f.mu.Unlock()
		return ErrAlreadySettled
	case StateFormReady:
		// допустимый переход
	default:
		f.mu.Unlock()
		return ErrNotReady
	}
	f.state = StateConfirmPending
	intentID := f.intent.ID
	f.mu.Unlock()

	err := f.provider.ConfirmIntent(ctx, intentID, returnURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil {
		f.state = StateSettled
		f.outcome = OutcomeSucceeded
		f.lastCode = ""
		return nil
	}

	// Форма остаётся доступной для повторной попытки при любой ошибке
	// подтверждения: карта, валидация, неклассифицированный сбой.
	f.lastCode = errorCode(err)
	f.state = StateFormReady
	return err
}

func errorCode(err error) string {
	var provErr *Error
	if errors.As(err, &provErr) {
		if provErr.Code != "" {
			return provErr.Code
		}
		return provErr.Category
	}
	return CategoryUnclassified
}
