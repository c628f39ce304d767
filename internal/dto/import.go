package dto

// ImportRow is one transaction row in a JSON batch import (BANK/OCR source).
type ImportRow struct {
	Date        string `json:"date" binding:"required"`
	Amount      string `json:"amount" binding:"required"` // Decimal string
	Payee       string `json:"payee"`
	Description string `json:"description"`
}

// ImportCSVRow is one line of a bank/OCR CSV export. Column headers follow
// the ingestion feed layout.
type ImportCSVRow struct {
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Payee       string `csv:"payee"`
	Description string `csv:"description"`
}

// ImportBatchRequest is a JSON batch import payload.
type ImportBatchRequest struct {
	ClientID string      `json:"clientID" binding:"required"`
	Rows     []ImportRow `json:"rows" binding:"required,min=1"`
}

// ImportResultResponse reports how many rows were ingested.
type ImportResultResponse struct {
	Imported int    `json:"imported"`
	Source   string `json:"source"`
}
