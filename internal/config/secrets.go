package config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

// NewSecretsClient creates a Secrets Manager client for region
func NewSecretsClient(region string) (secretsmanageriface.SecretsManagerAPI, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create AWS session: %w", err)
	}
	return secretsmanager.New(sess), nil
}

// GetSecretValue retrieves a string secret from AWS Secrets Manager
func GetSecretValue(ctx context.Context, client secretsmanageriface.SecretsManagerAPI, secretID string) (string, error) {
	result, err := client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret: %w", err)
	}

	// Secrets Manager can store secrets as SecretString or SecretBinary
	if result.SecretString == nil {
		return "", fmt.Errorf("secret is stored as binary, expected string")
	}
	return *result.SecretString, nil
}

// ResolveRedisURL fills cfg.RedisURL from Secrets Manager when only a
// secret id is configured. The secret is either the bare URL or a JSON
// object with a "url" field.
func ResolveRedisURL(ctx context.Context, cfg *StorageConfig, client secretsmanageriface.SecretsManagerAPI) error {
	if cfg.RedisURL != "" || cfg.RedisSecretID == "" {
		return nil
	}

	secret, err := GetSecretValue(ctx, client, cfg.RedisSecretID)
	if err != nil {
		return err
	}
	secret = strings.TrimSpace(secret)

	if strings.HasPrefix(secret, "{") {
		var parsed struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal([]byte(secret), &parsed); err != nil {
			return fmt.Errorf("failed to parse JSON secret: %w", err)
		}
		secret = parsed.URL
	}
	if secret == "" {
		return fmt.Errorf("secret %s holds no redis url", cfg.RedisSecretID)
	}

	cfg.RedisURL = secret
	return nil
}
