package usecase

import (
	"errors"

	"github.com/fastygo/daybook/domain"
)

// Internal passes domain errors through and classifies anything else as INTERNAL with msg.
func Internal(msg string, err error) error {
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	var pErr *domain.PartialError
	if errors.As(err, &pErr) {
		return err
	}
	return domain.WrapError(domain.ErrCodeInternal, msg, err)
}
