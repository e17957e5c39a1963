package service

import (
	"errors"
	"fmt"

	"basegraph.app/approvals/internal/store"
)

// Sentinel errors returned by every service. Handlers classify them with
// errors.Is to pick a status code.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// fromStore translates store sentinels into service sentinels and wraps
// anything else with op.
func fromStore(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return conflictf("concurrent update, retry with fresh state")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
