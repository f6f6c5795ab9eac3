package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrCustomerFieldRequired обязательное поле анкеты не заполнено
	ErrCustomerFieldRequired = errors.New("customer: required field is empty")

	// ErrInvalidPostalCode почтовый индекс не в формате A2A 1B4
	ErrInvalidPostalCode = errors.New("customer: postal code must be in format A2A 1B4")

	// ErrInvalidLicenseDates срок действия прав раньше даты выдачи
	ErrInvalidLicenseDates = errors.New("customer: license expiry precedes issue date")
)

// CustomerProfile снимок анкеты клиента на момент записи
type CustomerProfile struct {
	FirstName     string         `json:"firstName"`
	MiddleName    *string        `json:"middleName,omitempty"`
	LastName      string         `json:"lastName"`
	DateOfBirth   *time.Time     `json:"dateOfBirth,omitempty"`
	DriverLicense *DriverLicense `json:"driverLicense,omitempty"`
	Address       Address        `json:"address"`
}

// DriverLicense водительское удостоверение (необязательно)
type DriverLicense struct {
	Number     string     `json:"number"`
	IssueDate  *time.Time `json:"issueDate,omitempty"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

// Address адрес клиента
type Address struct {
	Suite        *string `json:"suite,omitempty"`
	StreetNumber string  `json:"streetNumber"`
	StreetName   string  `json:"streetName"`
	City         string  `json:"city"`
	Province     string  `json:"province"`
	PostalCode   string  `json:"postalCode"`
}

// FullName возвращает имя клиента для уведомлений
func (c CustomerProfile) FullName() string {
	parts := []string{c.FirstName}
	if c.MiddleName != nil && *c.MiddleName != "" {
		parts = append(parts, *c.MiddleName)
	}
	parts = append(parts, c.LastName)
	return strings.Join(parts, " ")
}

// IsEmpty проверяет, что анкета не передана
func (c CustomerProfile) IsEmpty() bool {
	return c.FirstName == "" && c.LastName == "" && c.Address == (Address{})
}

// Normalize обрезает пробелы и приводит индекс к верхнему регистру
func (c *CustomerProfile) Normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Address.StreetNumber = strings.TrimSpace(c.Address.StreetNumber)
	c.Address.StreetName = strings.TrimSpace(c.Address.StreetName)
	c.Address.City = strings.TrimSpace(c.Address.City)
	c.Address.Province = strings.TrimSpace(c.Address.Province)
	c.Address.PostalCode = strings.ToUpper(strings.TrimSpace(c.Address.PostalCode))
}

// Validate проверяет заполненность анкеты
func (c CustomerProfile) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"address.streetNumber", c.Address.StreetNumber},
		{"address.streetName", c.Address.StreetName},
		{"address.city", c.Address.City},
		{"address.province", c.Address.Province},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrCustomerFieldRequired, f.name)
		}
	}

	if !IsValidPostalCode(c.Address.PostalCode) {
		return fmt.Errorf("%w: got %q", ErrInvalidPostalCode, c.Address.PostalCode)
	}

	if l := c.DriverLicense; l != nil && l.IssueDate != nil && l.ExpiryDate != nil && l.ExpiryDate.Before(*l.IssueDate) {
		return ErrInvalidLicenseDates
	}

	return nil
}

// IsValidPostalCode проверяет формат "A2A 1B4": 7 символов, пробел на 4-й позиции, остальное буквы и цифры
func IsValidPostalCode(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 7 || code[3] != ' ' {
		return false
	}
	for i, r := range code {
		if i == 3 {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
