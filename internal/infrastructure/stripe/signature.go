package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignatureHeader is the parsed form of the provider's signature header:
// "t=<unix-ts>,v1=<hex-hmac>[,v1=<hex-hmac>...]".
type SignatureHeader struct {
	Timestamp  string
	Signatures []string
}

func ParseSignatureHeader(header string) (SignatureHeader, error) {
	var out SignatureHeader
	if strings.TrimSpace(header) == "" {
		return out, fmt.Errorf("signature header missing")
	}
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return SignatureHeader{}, fmt.Errorf("malformed signature header segment %q", part)
		}
		switch k {
		case "t":
			out.Timestamp = v
		case "v1":
			out.Signatures = append(out.Signatures, v)
		}
	}
	if out.Timestamp == "" || len(out.Signatures) == 0 {
		return SignatureHeader{}, fmt.Errorf("signature header missing timestamp or v1 component")
	}
	return out, nil
}

// VerifySignature recomputes the HMAC-SHA256 over "{timestamp}.{rawBody}" and
// compares it against every v1 candidate in constant time. Fails closed: any
// parse error or mismatch is an error and no state may change after one.
func VerifySignature(secret string, header string, body []byte) error {
	if secret == "" {
		return fmt.Errorf("webhook secret not configured")
	}
	h, err := ParseSignatureHeader(header)
	if err != nil {
		return err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(h.Timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)
	for _, sig := range h.Signatures {
		got, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, got) {
			return nil
		}
	}
	return fmt.Errorf("signature mismatch")
}
