package domain

import "errors"

// Ошибки, которые могут вернуть use case'ы и адаптеры хранилища.
var (
	ErrInvalidRequest   = errors.New("invalid search request")
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrRefreshFailed    = errors.New("street index refresh failed")
)
