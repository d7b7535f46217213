package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	ErrCodeUpstreamPayment    ErrorCode = "UPSTREAM_PAYMENT_ERROR"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал
// и для обёрнутых копий именованных ошибок.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Upstream оборачивает ошибку платёжного провайдера.
func Upstream(err error, message string) *AppError {
	return Wrap(err, ErrCodeUpstreamPayment, message)
}

// Database оборачивает ошибку хранилища.
func Database(err error, message string) *AppError {
	return Wrap(err, ErrCodeDatabaseError, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodePreconditionFailed:
		return http.StatusConflict
	case ErrCodeUpstreamPayment:
		return http.StatusBadGateway
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsPreconditionFailed(err error) bool {
	return CodeOf(err) == ErrCodePreconditionFailed
}

var (
	ErrUnauthorized = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden    = New(ErrCodeForbidden, "недостаточно прав")

	ErrContractNotFound = New(ErrCodeNotFound, "контракт не найден")
	ErrJobNotFound      = New(ErrCodeNotFound, "задание не найдено")
	ErrPaymentNotFound  = New(ErrCodeNotFound, "платёж не найден")
	ErrCouponNotFound   = New(ErrCodeNotFound, "купон не найден")

	// Эскроу
	ErrContractNotFullySigned   = New(ErrCodePreconditionFailed, "контракт подписан не обеими сторонами")
	ErrEscrowAlreadyExists      = New(ErrCodePreconditionFailed, "эскроу-платёж для контракта уже создан")
	ErrPaymentMethodNotVerified = New(ErrCodePreconditionFailed, "способ оплаты клиента не подтверждён")
	ErrNoEscrowFound            = New(ErrCodePreconditionFailed, "эскроу-платёж для контракта не найден")
	ErrAlreadyReleased          = New(ErrCodePreconditionFailed, "средства по контракту уже выплачены")
	ErrEscrowNotPaid            = New(ErrCodePreconditionFailed, "эскроу-платёж ещё не оплачен")
	ErrInvalidEscrowTransition  = New(ErrCodePreconditionFailed, "недопустимый переход статуса эскроу")

	// Honey drops
	ErrInsufficientDrops  = New(ErrCodePreconditionFailed, "недостаточно honey drops")
	ErrAlreadyApplied     = New(ErrCodeConflict, "отклик на задание уже отправлен")
	ErrJobClosed          = New(ErrCodePreconditionFailed, "задание больше не принимает отклики")
	ErrUnknownDropPackage = New(ErrCodeValidation, "неизвестный пакет honey drops")

	// Купоны
	ErrCouponInactive      = New(ErrCodePreconditionFailed, "купон неактивен")
	ErrCouponExpired       = New(ErrCodePreconditionFailed, "срок действия купона истёк")
	ErrCouponNotApplicable = New(ErrCodePreconditionFailed, "купон не предназначен для этой роли")
	ErrCouponExhausted     = New(ErrCodePreconditionFailed, "лимит использований купона исчерпан")
	ErrCouponAlreadyUsed   = New(ErrCodePreconditionFailed, "купон уже использован")
)
