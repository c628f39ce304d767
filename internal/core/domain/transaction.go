package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source indicates which channel produced a transaction.
type Source string

const (
	SourceBank      Source = "BANK"
	SourceClientApp Source = "CLIENT_APP"
	SourceOCR       Source = "OCR"
	SourceManual    Source = "MANUAL"
)

// Valid reports whether s is a member of the closed source set.
func (s Source) Valid() bool {
	switch s {
	case SourceBank, SourceClientApp, SourceOCR, SourceManual:
		return true
	}
	return false
}

// Sources returns the closed source set.
func Sources() []Source {
	return []Source{SourceBank, SourceClientApp, SourceOCR, SourceManual}
}

// TaxCode is the bookkeeper's tax classification of a transaction.
type TaxCode string

const (
	TaxCodeGST        TaxCode = "GST"
	TaxCodeGSTFree    TaxCode = "GST_FREE"
	TaxCodeInputTaxed TaxCode = "INPUT_TAXED"
	TaxCodeOutOfScope TaxCode = "OUT_OF_SCOPE"
	TaxCodePrivate    TaxCode = "PRIVATE"
)

// Valid reports whether c is a member of the closed tax code set.
// The empty value is allowed; it means not yet classified.
func (c TaxCode) Valid() bool {
	switch c {
	case "", TaxCodeGST, TaxCodeGSTFree, TaxCodeInputTaxed, TaxCodeOutOfScope, TaxCodePrivate:
		return true
	}
	return false
}

// TaxCodes returns the closed tax code set.
func TaxCodes() []TaxCode {
	return []TaxCode{TaxCodeGST, TaxCodeGSTFree, TaxCodeInputTaxed, TaxCodeOutOfScope, TaxCodePrivate}
}

// ModuleRouting names the downstream tax module that should consume a transaction.
type ModuleRouting string

const (
	ModuleMotorVehicle  ModuleRouting = "MOTOR_VEHICLE"
	ModuleHomeOccupancy ModuleRouting = "HOME_OCCUPANCY"
	ModuleUtilities     ModuleRouting = "UTILITIES"
	ModuleInternet      ModuleRouting = "INTERNET"
	ModuleGeneral       ModuleRouting = "GENERAL"
	ModuleDisallowed    ModuleRouting = "DISALLOWED"
)

// Valid reports whether m is a member of the closed routing set.
// The empty value is allowed; it means not yet routed.
func (m ModuleRouting) Valid() bool {
	switch m {
	case "", ModuleMotorVehicle, ModuleHomeOccupancy, ModuleUtilities, ModuleInternet, ModuleGeneral, ModuleDisallowed:
		return true
	}
	return false
}

// ModuleRoutings returns the closed routing set.
func ModuleRoutings() []ModuleRouting {
	return []ModuleRouting{ModuleMotorVehicle, ModuleHomeOccupancy, ModuleUtilities, ModuleInternet, ModuleGeneral, ModuleDisallowed}
}

// Flags is the fixed set of bookkeeper risk/quality markers.
type Flags struct {
	Late      bool `json:"late"`
	Duplicate bool `json:"duplicate"`
	HighRisk  bool `json:"high_risk"`
}

// Transaction is one canonical ledger row.
//
// Amount and Date are set once at creation and never mutated by any update
// path; corrections are modeled as offsetting transactions. A transaction is
// never hard-deleted; exclusion is the EXCLUDED status.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary key (UUID)
	ClientID      string          `json:"clientID"`      // Owning party (Not Null)
	Date          time.Time       `json:"date"`          // Transaction date, immutable
	Amount        decimal.Decimal `json:"amount"`        // Monetary amount, immutable

	// Client-origin fields, writable only through the client channel while
	// status < REVIEWED.
	PayeeRaw         string `json:"payeeRaw"`
	DescriptionRaw   string `json:"descriptionRaw"`
	Source           Source `json:"source"`
	CategoryClient   string `json:"categoryClient"`
	ModuleHintClient string `json:"moduleHintClient"`
	NotesClient      string `json:"notesClient"`

	// Bookkeeper fields, writable by bookkeeping staff and admin.
	CategoryBookkeeper string        `json:"categoryBookkeeper"`
	TaxCodeBookkeeper  TaxCode       `json:"taxCodeBookkeeper"` // Empty when unclassified
	NotesBookkeeper    string        `json:"notesBookkeeper"`
	Status             Status        `json:"status"`
	Flags              Flags         `json:"flags"`
	ModuleRouting      ModuleRouting `json:"moduleRouting"` // Empty when unrouted

	// Lock metadata, present only while status = LOCKED.
	LockedAt     *time.Time `json:"lockedAt,omitempty"`
	LockedByRole Role       `json:"lockedByRole,omitempty"`

	AuditFields
}
