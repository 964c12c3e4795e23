package nlq

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/goccy/go-json"
)

// fingerprintDomain separates query fingerprints from any other hash of
// the same bytes. The version suffix allows changing the encoding.
const fingerprintDomain = "viewql/query/v1"

// Fingerprint identifies a built query by content: equal view, SQL and
// parameters give equal fingerprints whatever the question or ask id.
//
// Format: hex(SHA256(domain + 0x00 + json({"view","sql","params"}))).
func Fingerprint(view, sql string, params []any) (string, error) {
	if params == nil {
		params = []any{}
	}
	data, err := json.Marshal(struct {
		View   string `json:"view"`
		SQL    string `json:"sql"`
		Params []any  `json:"params"`
	}{view, sql, params})
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(fingerprintDomain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
