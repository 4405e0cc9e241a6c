package jimeng

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrNoCredentials indicates the client was configured without a signing key pair.
var ErrNoCredentials = errors.New("jimeng: access credentials are required")

// Volcengine V4 signing constants for the visual service.
const (
	signingRegion    = "cn-north-1"
	signingService   = "cv"
	signingAlgorithm = "HMAC-SHA256"
	scopeTerminator  = "request"
	apiHost          = "visual.volcengineapi.com"
	contentTypeJSON  = "application/json"

	longTimeFormat  = "20060102T150405Z"
	shortTimeFormat = "20060102"
)

// Credentials is the Volcengine access key pair used to sign API requests.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Configured reports whether both halves of the key pair are present.
func (c Credentials) Configured() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func hashSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// deriveSigningKey chains HMAC-SHA256 over the short date, region, service and
// the fixed scope terminator, starting from the raw secret key.
func deriveSigningKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte(secret), date)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, scopeTerminator)
}

// canonicalQuery renders query parameters sorted by key and joined verbatim.
// The service verifies the signature against this exact string, so the request
// URL must carry it unmodified.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

// signRequest produces the headers for one signed POST to the visual API:
// X-Date, X-Content-Sha256, Content-Type and Authorization. The same inputs
// always produce byte-identical headers.
func signRequest(creds Credentials, now time.Time, query map[string]string, body []byte) (http.Header, error) {
	if !creds.Configured() {
		return nil, ErrNoCredentials
	}

	utc := now.UTC()
	longDate := utc.Format(longTimeFormat)
	shortDate := utc.Format(shortTimeFormat)

	payloadHash := hashSHA256(body)
	canonicalHeaders := strings.Join([]string{
		"content-type:" + contentTypeJSON,
		"host:" + apiHost,
		"x-content-sha256:" + payloadHash,
		"x-date:" + longDate,
	}, "\n") + "\n"
	signedHeaders := "content-type;host;x-content-sha256;x-date"

	canonicalRequest := strings.Join([]string{
		http.MethodPost,
		"/",
		canonicalQuery(query),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{shortDate, signingRegion, signingService, scopeTerminator}, "/")
	stringToSign := strings.Join([]string{
		signingAlgorithm,
		longDate,
		scope,
		hashSHA256([]byte(canonicalRequest)),
	}, "\n")

	key := deriveSigningKey(creds.SecretKey, shortDate, signingRegion, signingService)
	signature := hex.EncodeToString(hmacSHA256(key, stringToSign))

	header := http.Header{}
	header.Set("X-Date", longDate)
	header.Set("X-Content-Sha256", payloadHash)
	header.Set("Content-Type", contentTypeJSON)
	header.Set("Authorization", signingAlgorithm+" Credential="+creds.AccessKey+"/"+scope+
		", SignedHeaders="+signedHeaders+", Signature="+signature)
	return header, nil
}
