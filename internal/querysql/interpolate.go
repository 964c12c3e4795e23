package querysql

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Interpolate substitutes params into the placeholders of sql using SQLite
// literal syntax. The result is for display only (logs, CLI output, test
// expectations); execution always uses the parameterized form.
//
// Placeholders inside quoted strings or identifiers are left alone. The
// number of placeholders must equal len(params).
func Interpolate(sql string, params []any) (string, error) {
	var b strings.Builder
	b.Grow(len(sql))

	next := 0
	var quote byte
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			b.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
			b.WriteByte(ch)
		case ch == '?':
			if next >= len(params) {
				return "", fmt.Errorf("interpolate: more placeholders than parameters (%d)", len(params))
			}
			lit, err := Literal(params[next])
			if err != nil {
				return "", fmt.Errorf("interpolate parameter %d: %w", next+1, err)
			}
			b.WriteString(lit)
			next++
		default:
			b.WriteByte(ch)
		}
	}

	if next != len(params) {
		return "", fmt.Errorf("interpolate: %d placeholders for %d parameters", next, len(params))
	}
	return b.String(), nil
}

// Literal renders a parameter value as an SQLite literal.
func Literal(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return "", fmt.Errorf("non-finite float %v", val)
		}
		s := strconv.FormatFloat(val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s, nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(val)) + "'", nil
	default:
		return "", fmt.Errorf("unsupported parameter type %T", v)
	}
}
