// File: internal/sigv4/signer.go
// Package sigv4 implements AWS Signature Version 4 for single-shot POST requests
// with a fixed signed-header set (content-type, host, x-amz-date) and an empty
// query string. Every intermediate value is exposed so callers and tests can
// inspect the exact bytes that went into the signature.
package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	// Algorithm is the only signing algorithm this package produces.
	Algorithm = "AWS4-HMAC-SHA256"
	// SignedHeaders lists the canonical headers in lexical order.
	SignedHeaders = "content-type;host;x-amz-date"

	amzDateLayout = "20060102T150405Z"
	terminator    = "aws4_request"
)

// Request carries everything that goes into a signature.
type Request struct {
	Method      string // defaults to POST
	URI         string // canonical URI, used verbatim
	Host        string
	Region      string
	Service     string
	ContentType string
	AccessKeyID string
	SecretKey   string
	Payload     []byte
	Time        time.Time
}

// Signature is the ephemeral signing context for one request.
type Signature struct {
	AmzDate          string
	DateStamp        string
	PayloadHash      string
	CanonicalRequest string
	CredentialScope  string
	StringToSign     string
	SigningKey       []byte
	Signature        string
	Authorization    string
}

// Sign computes the SigV4 signature for req. It is pure: identical input yields
// identical output.
func Sign(req Request) Signature {
	method := req.Method
	if method == "" {
		method = "POST"
	}

	// 1. Timestamps.
	amzDate := req.Time.UTC().Format(amzDateLayout)
	dateStamp := amzDate[:8]

	// 2. Payload hash.
	payloadHash := hashHex(req.Payload)

	// 3. Canonical headers, one per line with a trailing newline each.
	canonicalHeaders := "content-type:" + req.ContentType + "\n" +
		"host:" + req.Host + "\n" +
		"x-amz-date:" + amzDate + "\n"

	// 4. Canonical request. The query string is always empty.
	canonicalRequest := strings.Join([]string{
		method,
		req.URI,
		"",
		canonicalHeaders,
		SignedHeaders,
		payloadHash,
	}, "\n")

	// 5. Credential scope.
	scope := CredentialScope(dateStamp, req.Region, req.Service)

	// 6. String to sign.
	stringToSign := Algorithm + "\n" +
		amzDate + "\n" +
		scope + "\n" +
		hashHex([]byte(canonicalRequest))

	// 7-8. Key chain and signature.
	signingKey := DeriveSigningKey(req.SecretKey, dateStamp, req.Region, req.Service)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	// 9. Authorization header.
	authorization := Algorithm + " Credential=" + req.AccessKeyID + "/" + scope +
		", SignedHeaders=" + SignedHeaders +
		", Signature=" + signature

	return Signature{
		AmzDate:          amzDate,
		DateStamp:        dateStamp,
		PayloadHash:      payloadHash,
		CanonicalRequest: canonicalRequest,
		CredentialScope:  scope,
		StringToSign:     stringToSign,
		SigningKey:       signingKey,
		Signature:        signature,
		Authorization:    authorization,
	}
}

// CredentialScope returns "<date>/<region>/<service>/aws4_request".
func CredentialScope(dateStamp, region, service string) string {
	return dateStamp + "/" + region + "/" + service + "/" + terminator
}

// DeriveSigningKey runs the HMAC chain kSecret -> kDate -> kRegion -> kService -> kSigning.
func DeriveSigningKey(secretKey, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, terminator)
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
