// File: internal/sigv4/signer_test.go
package sigv4

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	exampleAccessKey = "AKIDEXAMPLE"
	exampleSecretKey = "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY"
)

// suiteRequest mirrors the "post-x-www-form-urlencoded" case of the AWS SigV4 test suite.
func suiteRequest(t *testing.T) Request {
	t.Helper()
	ts, err := time.Parse(amzDateLayout, "20150830T123600Z")
	require.NoError(t, err)
	return Request{
		Method:      "POST",
		URI:         "/",
		Host:        "example.amazonaws.com",
		Region:      "us-east-1",
		Service:     "service",
		ContentType: "application/x-www-form-urlencoded",
		AccessKeyID: exampleAccessKey,
		SecretKey:   exampleSecretKey,
		Payload:     []byte("Param1=value1"),
		Time:        ts,
	}
}

// -- Published Vectors --

func TestDeriveSigningKey_PublishedVector(t *testing.T) {
	key := DeriveSigningKey(exampleSecretKey, "20120215", "us-east-1", "iam")
	assert.Equal(t, "f4780e2d9f65fa895f9c67b32ce1baf0b0d8a43505a000a1a9e090d414db404d", hex.EncodeToString(key))
}

func TestSign_PublishedSuiteVector(t *testing.T) {
	sig := Sign(suiteRequest(t))

	expectedCanonical := "POST\n" +
		"/\n" +
		"\n" +
		"content-type:application/x-www-form-urlencoded\n" +
		"host:example.amazonaws.com\n" +
		"x-amz-date:20150830T123600Z\n" +
		"\n" +
		"content-type;host;x-amz-date\n" +
		"9095672bbd1f56dfc5b65f3e153adc8731a4a654192329106275f4c7b24d0b6e"
	assert.Equal(t, expectedCanonical, sig.CanonicalRequest)

	expectedSTS := "AWS4-HMAC-SHA256\n" +
		"20150830T123600Z\n" +
		"20150830/us-east-1/service/aws4_request\n" +
		"42a5e5bb34198acb3e84da4f085bb7927f2bc277ca766e6d19c73c2154021281"
	assert.Equal(t, expectedSTS, sig.StringToSign)

	assert.Equal(t, "ff11897932ad3f4e8b18135d722051e5ac45fc38421b1da7b9d196a0fe09473a", sig.Signature)
	assert.Equal(t,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/service/aws4_request, "+
			"SignedHeaders=content-type;host;x-amz-date, "+
			"Signature=ff11897932ad3f4e8b18135d722051e5ac45fc38421b1da7b9d196a0fe09473a",
		sig.Authorization)
}

// -- Properties --

func TestSign_TimestampFormatting(t *testing.T) {
	req := suiteRequest(t)
	// A non-UTC zone must be normalised before formatting.
	req.Time = time.Date(2024, 3, 9, 23, 5, 7, 999, time.FixedZone("PST", -8*3600))

	sig := Sign(req)
	assert.Equal(t, "20240310T070507Z", sig.AmzDate)
	assert.Equal(t, "20240310", sig.DateStamp)
	assert.Equal(t, "20240310/us-east-1/service/aws4_request", sig.CredentialScope)
}

func TestSign_DefaultsToPOST(t *testing.T) {
	req := suiteRequest(t)
	req.Method = ""
	assert.Equal(t, Sign(suiteRequest(t)).Signature, Sign(req).Signature)
}

func TestSign_Deterministic(t *testing.T) {
	req := suiteRequest(t)
	first := Sign(req)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Sign(req))
	}
}

func TestSign_EveryInputAffectsSignature(t *testing.T) {
	base := Sign(suiteRequest(t)).Signature

	mutations := map[string]func(r *Request){
		"uri":          func(r *Request) { r.URI = "/model/x/invoke" },
		"host":         func(r *Request) { r.Host = "example.amazonaws.con" },
		"region":       func(r *Request) { r.Region = "us-east-2" },
		"service":      func(r *Request) { r.Service = "bedrock" },
		"content type": func(r *Request) { r.ContentType = "application/json" },
		"secret":       func(r *Request) { r.SecretKey = exampleSecretKey + "x" },
		"payload":      func(r *Request) { r.Payload = []byte("Param1=value2") },
		"time":         func(r *Request) { r.Time = r.Time.Add(time.Second) },
		"method":       func(r *Request) { r.Method = "PUT" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			req := suiteRequest(t)
			mutate(&req)
			assert.NotEqual(t, base, Sign(req).Signature)
		})
	}

	t.Run("access key only changes the credential", func(t *testing.T) {
		req := suiteRequest(t)
		req.AccessKeyID = "AKIDOTHER"
		sig := Sign(req)
		assert.Equal(t, base, sig.Signature)
		assert.Contains(t, sig.Authorization, "Credential=AKIDOTHER/")
	})
}

func TestSign_EmptyPayloadHash(t *testing.T) {
	req := suiteRequest(t)
	req.Payload = nil
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sign(req).PayloadHash)
}
