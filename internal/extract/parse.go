package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"checkparser/pkg/models"
)

// ParseResponse turns raw inference-service text into a CheckRecord.
//
// The model is instructed to return bare JSON, but responses routinely
// arrive fenced in markdown or padded with commentary, so the parser
// strips fences, isolates the first balanced JSON object and coerces the
// amount field before filling the record. Every schema field is present in
// the output, defaulting to the empty string (zero for the amount) when
// the model omitted it.
func ParseResponse(text string) (*models.CheckRecord, error) {
	const op = "ParseResponse"

	text = stripFences(strings.TrimSpace(text))
	obj := findJSONObject(text)
	if obj == "" {
		return nil, NewExtractError(op, ErrMalformedResponse, "no JSON object in response")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return nil, NewExtractError(op, ErrMalformedResponse, fmt.Sprintf("invalid JSON: %v", err))
	}

	cents, err := coerceAmountCents(fields["Amount"])
	if err != nil {
		return nil, NewExtractError(op, ErrMalformedResponse, err.Error())
	}

	record := &models.CheckRecord{
		Payer:       normalizePayer(getString(fields, "Payer")),
		Date:        getString(fields, "Date"),
		AmountCents: cents,
		Bank:        getString(fields, "Bank"),
		CheckNumber: getString(fields, "Check_Number"),
		Account:     getString(fields, "Account"),
		Routing:     getString(fields, "Routing"),
		Claim:       getString(fields, "Claim"),
	}
	return record, nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if _, rest, ok := strings.Cut(text, "\n"); ok {
		text = rest
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// findJSONObject returns the first balanced {...} substring of text,
// ignoring braces inside string literals. Returns "" when no balanced
// object exists.
func findJSONObject(text string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

// coerceAmountCents converts the Amount field to cents. The model may
// return it as a JSON number or as a string like "$1,204.50"; either way
// the result must be a valid non-negative number — checks never carry a
// negative face amount, so one here means the model misread the page.
func coerceAmountCents(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		if t < 0 {
			return 0, fmt.Errorf("amount is negative: %v", t)
		}
		return int64(math.Round(t * 100)), nil
	case string:
		cleaned := strings.TrimSpace(t)
		cleaned = strings.ReplaceAll(cleaned, "$", "")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		cleaned = strings.ReplaceAll(cleaned, " ", "")
		if cleaned == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("amount is not a number: %q", t)
		}
		if f < 0 {
			return 0, fmt.Errorf("amount is negative: %q", t)
		}
		return int64(math.Round(f * 100)), nil
	default:
		return 0, fmt.Errorf("amount has unexpected type %T", v)
	}
}

// normalizePayer applies the BCBS Florida sub-brand naming rules as a
// defensive backstop to the prompt instructions. Payers outside that
// family pass through untouched.
func normalizePayer(payer string) string {
	switch {
	case strings.Contains(payer, "Health Options"):
		return "BlueCross BlueShield of Florida (Health Options)"
	case strings.Contains(payer, "State Employees' PPO Plan"):
		return "BCBS FL - State Employees' PPO Plan"
	default:
		return payer
	}
}

// getString safely extracts a string value from a decoded JSON map.
// Numeric values are rendered as text so identifier fields the model
// returned as numbers are not lost; leading zeros only survive when the
// model quotes them, which the prompt demands.
func getString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
