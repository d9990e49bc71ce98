package redact

import (
	"regexp"
	"strings"
)

// MaskToken replaces every secret value under a record's data field.
const MaskToken = "***MASKED***"

const redacted = "[REDACTED]"

var (
	// IAM access tokens are JWTs; they can surface in transport error text.
	bearerPattern = regexp.MustCompile(`eyJ[a-zA-Z0-9_\-]+\.[a-zA-Z0-9_\-]+\.[a-zA-Z0-9_\-]+`)
)

// Redactor scrubs configured credentials and bearer tokens from free text
// before it leaves the process.
type Redactor struct {
	secrets []string
}

func New(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, secret := range secrets {
		if strings.TrimSpace(secret) != "" {
			r.secrets = append(r.secrets, secret)
		}
	}
	return r
}

func (r *Redactor) RedactString(input string) string {
	if r == nil {
		return input
	}
	for _, secret := range r.secrets {
		input = strings.ReplaceAll(input, secret, redacted)
	}
	return bearerPattern.ReplaceAllString(input, redacted)
}

// MaskSecretData returns a copy of record with every value under "data"
// replaced by MaskToken. Keys and all other fields are preserved and record
// itself is never modified. Records without a map-valued "data" field come
// back as an unchanged copy.
func MaskSecretData(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	out := copyMap(record)
	data, ok := record["data"].(map[string]any)
	if !ok {
		return out
	}
	masked := make(map[string]any, len(data))
	for key := range data {
		masked[key] = MaskToken
	}
	out["data"] = masked
	return out
}

func MaskSecretList(records []map[string]any) []map[string]any {
	if records == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		out = append(out, MaskSecretData(record))
	}
	return out
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return copyMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
