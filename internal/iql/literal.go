package iql

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	errBadEscape = errors.New("invalid escape sequence")
	errRange     = errors.New("number out of range")
	errOctalLike = errors.New("leading zeros in integer literal")
)

// decodeString decodes a quoted string token (single or double quotes).
//
// Escapes follow the set shared by Python and Go: \n \t \r \\ \' \" \a \b
// \f \v \xHH \uHHHH \UHHHHHHHH and three-digit octal. The result is NFC
// normalized so equal-looking strings compare equal at the backend.
func decodeString(text string) (StringValue, error) {
	if len(text) < 2 {
		return "", errBadEscape
	}
	body := text[1 : len(text)-1]

	var b strings.Builder
	b.Grow(len(body) + 2)
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '\\' && i+1 < len(body):
			if body[i+1] == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte('\\')
				b.WriteByte(body[i+1])
			}
			i++
		case ch == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')

	s, err := strconv.Unquote(b.String())
	if err != nil {
		return "", errBadEscape
	}
	return StringValue(norm.NFC.String(s)), nil
}

// decodeInt decodes an integer token, optionally negated. A leading zero
// is allowed only when every digit is zero, so "007" is rejected while
// "0" and "00" decode to 0.
func decodeInt(text string, negative bool) (IntValue, error) {
	if len(text) > 1 && text[0] == '0' && strings.Trim(text, "0") != "" {
		return 0, errOctalLike
	}
	if negative {
		text = "-" + text
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, errRange
	}
	return IntValue(n), nil
}

// decodeFloat decodes a float token, optionally negated. Values that
// overflow to infinity are rejected.
func decodeFloat(text string, negative bool) (FloatValue, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, errRange
	}
	if negative {
		f = -f
	}
	return FloatValue(f), nil
}

// keywordLiteral maps the literal keywords to their values.
func keywordLiteral(name string) (Value, bool) {
	switch name {
	case "True":
		return BoolValue(true), true
	case "False":
		return BoolValue(false), true
	case "None":
		return NullValue{}, true
	}
	return nil, false
}
