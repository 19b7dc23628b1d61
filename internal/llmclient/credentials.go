// internal/llmclient/credentials.go
package llmclient

import (
	"strings"

	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AWSCredentials is the key pair used to sign Bedrock requests. Session tokens
// are not part of the signed header set and are therefore not carried.
type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Valid reports whether both halves of the key pair are present.
func (c AWSCredentials) Valid() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// ResolveAWSCredentials prefers the configured pair and otherwise falls back
// to AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY and then ~/.aws/credentials.
func ResolveAWSCredentials(accessKeyID, secretKey string) AWSCredentials {
	configured := AWSCredentials{
		AccessKeyID:     strings.TrimSpace(accessKeyID),
		SecretAccessKey: strings.TrimSpace(secretKey),
	}
	if configured.Valid() {
		return configured
	}

	chain := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{},
	})
	value, err := chain.GetWithContext(nil)
	if err != nil {
		return configured
	}
	resolved := AWSCredentials{AccessKeyID: value.AccessKeyID, SecretAccessKey: value.SecretAccessKey}
	if !resolved.Valid() {
		return configured
	}
	return resolved
}
