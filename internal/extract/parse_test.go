package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodResponse = `{"Payer": "BlueCross BlueShield of Georgia", "Date": "03/14/2024", "Amount": 304.94, "Bank": "Regions Bank", "Check_Number": "00231", "Account": "PAYEE-7741", "Routing": "061000052", "Claim": "CLM-2024-0042"}`

func TestParseResponsePlainJSON(t *testing.T) {
	record, err := ParseResponse(goodResponse)
	require.NoError(t, err)

	assert.Equal(t, "BlueCross BlueShield of Georgia", record.Payer)
	assert.Equal(t, "03/14/2024", record.Date)
	assert.Equal(t, int64(30494), record.AmountCents)
	assert.Equal(t, 304.94, record.Amount())
	assert.Equal(t, "Regions Bank", record.Bank)
	assert.Equal(t, "00231", record.CheckNumber, "leading zeros must survive")
	assert.Equal(t, "PAYEE-7741", record.Account)
	assert.Equal(t, "061000052", record.Routing)
	assert.Equal(t, "CLM-2024-0042", record.Claim)
}

func TestParseResponseStripsFences(t *testing.T) {
	fenced := "```json\n" + goodResponse + "\n```"
	record, err := ParseResponse(fenced)
	require.NoError(t, err)
	assert.Equal(t, int64(30494), record.AmountCents)
}

func TestParseResponseIgnoresCommentary(t *testing.T) {
	noisy := "Here is the extracted data you asked for:\n" + goodResponse + "\nLet me know if you need anything else."
	record, err := ParseResponse(noisy)
	require.NoError(t, err)
	assert.Equal(t, "00231", record.CheckNumber)
}

func TestParseResponseBracesInsideStrings(t *testing.T) {
	tricky := `{"Payer": "Aetna {Life}", "Date": "01/02/2023", "Amount": 10, "Bank": "", "Check_Number": "7", "Account": "", "Routing": "", "Claim": ""}`
	record, err := ParseResponse(tricky)
	require.NoError(t, err)
	assert.Equal(t, "Aetna {Life}", record.Payer)
	assert.Equal(t, int64(1000), record.AmountCents)
}

func TestParseResponseCoercesStringAmount(t *testing.T) {
	resp := `{"Payer": "Cigna", "Date": "01/01/2024", "Amount": "$1,204.50", "Bank": "", "Check_Number": "1", "Account": "", "Routing": "", "Claim": ""}`
	record, err := ParseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, int64(120450), record.AmountCents)
	assert.Equal(t, 1204.50, record.Amount())
}

func TestParseResponseMissingFieldsDefault(t *testing.T) {
	record, err := ParseResponse(`{"Payer": "Humana", "Amount": 55}`)
	require.NoError(t, err)

	assert.Equal(t, "Humana", record.Payer)
	assert.Equal(t, int64(5500), record.AmountCents)
	assert.Empty(t, record.Date)
	assert.Empty(t, record.Bank)
	assert.Empty(t, record.CheckNumber)
	assert.Empty(t, record.Account)
	assert.Empty(t, record.Routing)
	assert.Empty(t, record.Claim)
}

func TestParseResponseNoJSONObject(t *testing.T) {
	_, err := ParseResponse("I could not read the image, sorry.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestParseResponseUnbalancedBraces(t *testing.T) {
	_, err := ParseResponse(`{"Payer": "Cigna", "Amount": 55`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestParseResponseBadAmountString(t *testing.T) {
	_, err := ParseResponse(`{"Payer": "Cigna", "Amount": "three hundred"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestParseResponseNegativeAmount(t *testing.T) {
	for _, resp := range []string{
		`{"Payer": "Cigna", "Amount": -304.94}`,
		`{"Payer": "Cigna", "Amount": "-$304.94"}`,
	} {
		_, err := ParseResponse(resp)
		require.Error(t, err, "response %s", resp)
		assert.True(t, errors.Is(err, ErrMalformedResponse), "response %s", resp)
	}
}

func TestNormalizePayerVariants(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BlueCross BlueShield of Florida Health Options", "BlueCross BlueShield of Florida (Health Options)"},
		{"Health Options Inc.", "BlueCross BlueShield of Florida (Health Options)"},
		{"State Employees' PPO Plan", "BCBS FL - State Employees' PPO Plan"},
		{"BlueCross BlueShield of Florida", "BlueCross BlueShield of Florida"},
		{"BlueCross BlueShield of Tennessee", "BlueCross BlueShield of Tennessee"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePayer(tt.in), "input %q", tt.in)
	}
}

func TestFindJSONObjectFirstWins(t *testing.T) {
	text := `prefix {"a": 1} middle {"b": 2}`
	assert.Equal(t, `{"a": 1}`, findJSONObject(text))
}

func TestFindJSONObjectNested(t *testing.T) {
	text := `{"outer": {"inner": "value"}}`
	assert.Equal(t, text, findJSONObject(text))
}

func TestCoerceAmountCents(t *testing.T) {
	tests := []struct {
		in      any
		want    int64
		wantErr bool
	}{
		{304.94, 30494, false},
		{float64(1200), 120000, false},
		{"$1,204.50", 120450, false},
		{"1204.5", 120450, false},
		{"  99.99 ", 9999, false},
		{"", 0, false},
		{nil, 0, false},
		{-3.5, 0, true},
		{"-12.00", 0, true},
		{"($45.00)", 0, true},
		{"abc", 0, true},
		{true, 0, true},
	}
	for _, tt := range tests {
		got, err := coerceAmountCents(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}
