package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	repo "bakery/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL のエラーコード
const (
	pgForeignKeyViolation = "23503"
	pgClassConnection     = "08"
)

// gorm / pgx のエラーを repository のセンチネルに寄せる
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", repo.ErrReferenced, pgErr.Detail)
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgClassConnection:
			return fmt.Errorf("%w: %v", repo.ErrConnection, err)
		}
		return err
	}

	if isConnectionError(err) {
		return fmt.Errorf("%w: %v", repo.ErrConnection, err)
	}
	return err
}

func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	// ctxのキャンセルはDB障害ではない
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
