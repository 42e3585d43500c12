package structures

import "strings"

// ProductInfo is the decoded RESPONSE_UID body (spec §6.3/§6.6): a product
// type byte, the 16-byte raw UID blob, a reserved byte, and a model name
// string pulled straight off the wire.
type ProductInfo struct {
	Type  uint8
	UID   string // base-32 form, see UnpackUID
	Model string // canonicalized, see CanonicalModelName
}

// DecodeProductInfo decodes a RESPONSE_UID body: type(1) + uid(16) +
// reserved(1) + model(rest, C string).
func DecodeProductInfo(message []byte) (*ProductInfo, error) {
	c := NewCursor(message)
	t, err := c.U8()
	if err != nil {
		return nil, err
	}
	rawUID, err := c.Bytes(16)
	if err != nil {
		return nil, err
	}
	if _, err := c.U8(); err != nil { // reserved
		return nil, err
	}
	model, err := c.CString()
	if err != nil {
		return nil, err
	}
	return &ProductInfo{
		Type:  t,
		UID:   UnpackUID(rawUID),
		Model: CanonicalModelName(model),
	}, nil
}

// brandPrefixes maps a raw model prefix to its canonical brand spelling.
// Longer/more specific prefixes are listed first since "ecoMAX" is itself
// a prefix of "ecoMAXX".
var brandPrefixes = []struct {
	prefix, brand string
}{
	{"ecoMAXX", "ecoMAXX"},
	{"ecoMAX", "ecoMAX"},
	{"EM", "ecoMAX"},
}

// CanonicalModelName expands the abbreviated brand prefix a controller
// reports over the wire into the full marketing name (spec §6.6), e.g.
// "EM360P2-ZF" -> "ecoMAX 360P2-ZF", "ecoMAXX800R3" -> "ecoMAXX 800R3".
// Names that don't match a known brand prefix are returned unchanged.
func CanonicalModelName(raw string) string {
	for _, b := range brandPrefixes {
		if !strings.HasPrefix(raw, b.prefix) {
			continue
		}
		rest := strings.TrimSpace(raw[len(b.prefix):])
		if rest == "" {
			return b.brand
		}
		return b.brand + " " + rest
	}
	return raw
}
