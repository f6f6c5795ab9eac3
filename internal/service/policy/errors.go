package policy

import "errors"

var (
	// ErrInvalidCandidate возвращается, если у кандидата нет услуги или политики
	ErrInvalidCandidate = errors.New("policy: invalid candidate")

	// ErrInternal возвращается при ошибке чтения данных
	ErrInternal = errors.New("policy: internal error")
)
