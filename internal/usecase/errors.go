package usecase

import (
	"errors"
	"fmt"

	repo "bakery/internal/repository"
)

// エラーの種類（呼び出し側はこれで表示・リトライを決める）
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindValidation           ErrorKind = "validation"
	KindInsufficientStock    ErrorKind = "insufficient_stock"
	KindReferentialIntegrity ErrorKind = "referential_integrity"
	KindInvalidStatus        ErrorKind = "invalid_status"
	KindConnection           ErrorKind = "connection"
	KindInternal             ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind
	Message string

	// ReferentialIntegrity のときの参照件数
	References int64

	Err error
}

func (e *Error) Error() string {
	if e.References > 0 {
		return fmt.Sprintf("%s: %s (%d references)", e.Kind, e.Message, e.References)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

// 種類が分からないものは internal
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if ue, ok := AsError(err); ok {
		return ue.Kind
	}
	return KindInternal
}

func referencedError(message string, count int64) error {
	return &Error{
		Kind:       KindReferentialIntegrity,
		Message:    message,
		References: count,
	}
}

// repository のエラーを usecase のエラーに変換する
// notFoundMsg は ErrNotFound のときのメッセージ
func storeError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: notFoundMsg, Err: err}
	case errors.Is(err, repo.ErrConnection):
		return &Error{Kind: KindConnection, Message: "store unreachable", Err: err}
	case errors.Is(err, repo.ErrReferenced):
		return &Error{Kind: KindReferentialIntegrity, Message: "still referenced", Err: err}
	}
	return &Error{Kind: KindInternal, Message: "db error", Err: err}
}
