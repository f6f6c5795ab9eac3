package providerpolicy

import "errors"

var (
	// ErrPolicyNotFound возвращается, когда у исполнителя нет переопределений
	ErrPolicyNotFound = errors.New("providerpolicy.repository: policy not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("providerpolicy.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("providerpolicy.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("providerpolicy.repository: failed to scan row")
)
