package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sole-ledger/internal/models"
)

const dayLayout = "2006-01-02"

// parseInstant accepts RFC 3339 timestamps and bare dates (UTC midnight).
func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// parseOptionalUUID maps nil or "" to nil.
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// currencyOrDefault maps a blank currency to the default and rejects
// anything that is not a three-letter code.
func currencyOrDefault(c string) (string, error) {
	if strings.TrimSpace(c) == "" {
		return models.DefaultCurrency, nil
	}
	code, ok := models.NormalizeCurrency(c)
	if !ok {
		return "", ErrInvalidCurrency
	}
	return code, nil
}
