package service

import "errors"

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindConflict
	KindNotFound
	KindUnauthorized
)

// Error is a domain error carrying a stable machine-readable code.
type Error struct {
	Kind ErrorKind
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

var (
	ErrCSVFileRequired    = newError(KindValidation, "CSV_FILE_REQUIRED")
	ErrNoTransactions     = newError(KindValidation, "NO_TRANSACTIONS_FOUND")
	ErrMappingRequired    = newError(KindValidation, "MAPPING_REQUIRED")
	ErrInvalidPeriodStart = newError(KindValidation, "INVALID_PERIOD_START")
	ErrInvalidPeriodEnd   = newError(KindValidation, "INVALID_PERIOD_END")
	ErrInvalidFromDate    = newError(KindValidation, "INVALID_FROM_DATE")
	ErrInvalidToDate      = newError(KindValidation, "INVALID_TO_DATE")
	ErrInvalidPeriod      = newError(KindValidation, "INVALID_PERIOD")
	ErrInvalidIssueDate   = newError(KindValidation, "INVALID_ISSUE_DATE")
	ErrInvalidDueDate     = newError(KindValidation, "INVALID_DUE_DATE")
	ErrInvalidRequest     = newError(KindValidation, "INVALID_REQUEST")
	ErrInvalidCSV         = newError(KindValidation, "INVALID_CSV")
	ErrInvalidCurrency    = newError(KindValidation, "INVALID_CURRENCY")

	ErrTaxPeriodExists       = newError(KindConflict, "TAX_PERIOD_ALREADY_EXISTS")
	ErrUserExists            = newError(KindConflict, "USER_EXISTS")
	ErrCategoryExists        = newError(KindConflict, "CATEGORY_ALREADY_EXISTS")
	ErrInvoiceNumberConflict = newError(KindConflict, "INVOICE_NUMBER_CONFLICT")

	ErrEntityNotFound      = newError(KindNotFound, "ENTITY_NOT_FOUND")
	ErrTaxPeriodNotFound   = newError(KindNotFound, "TAX_PERIOD_NOT_FOUND")
	ErrTransactionNotFound = newError(KindNotFound, "TRANSACTION_NOT_FOUND")
	ErrCategoryNotFound    = newError(KindNotFound, "CATEGORY_NOT_FOUND")
	ErrReminderNotFound    = newError(KindNotFound, "REMINDER_NOT_FOUND")
	ErrInvoiceNotFound     = newError(KindNotFound, "INVOICE_NOT_FOUND")
	ErrUserNotFound        = newError(KindNotFound, "USER_NOT_FOUND")

	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS")
)

// AsError extracts a domain error from err's chain.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
