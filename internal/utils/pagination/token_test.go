package pagination_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdcbooks/tax_ledger_app/internal/utils/pagination"
)

func TestTokenRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)
	id := "d3b4c1aa-1111-2222-3333-444455556666"

	token := pagination.EncodeToken(createdAt, id)

	gotTime, gotID, err := pagination.DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, gotTime.Equal(createdAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, _, err := pagination.DecodeToken("not-base64!!!")
	assert.Error(t, err)

	// Valid base64 but missing the separator
	_, _, err = pagination.DecodeToken(base64.StdEncoding.EncodeToString([]byte("no-separator")))
	assert.Error(t, err)

	// Separator present but bad timestamp
	_, _, err = pagination.DecodeToken(base64.StdEncoding.EncodeToString([]byte("yesterday|some-id")))
	assert.Error(t, err)

	// Empty id
	_, _, err = pagination.DecodeToken(base64.StdEncoding.EncodeToString([]byte("2025-03-14T09:26:53Z|")))
	assert.Error(t, err)
}
