package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptionService_RoundTrip(t *testing.T) {
	es, err := NewEncryptionService("test-master-key")
	require.NoError(t, err)

	encrypted, err := es.Encrypt("sk-secret-value")
	require.NoError(t, err)
	require.NotEmpty(t, encrypted)
	assert.NotEqual(t, "sk-secret-value", encrypted)

	decrypted, err := es.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-value", decrypted)
}

func TestEncryptionService_EmptyValue(t *testing.T) {
	es, err := NewEncryptionService("test-master-key")
	require.NoError(t, err)

	encrypted, err := es.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, encrypted)

	decrypted, err := es.Decrypt("")
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestEncryptionService_SameKeyAcrossInstances(t *testing.T) {
	// 相同的密码短语必须派生出相同的密钥，
	// 否则重启后无法解密已有配置
	es1, err := NewEncryptionService("shared-passphrase")
	require.NoError(t, err)
	es2, err := NewEncryptionService("shared-passphrase")
	require.NoError(t, err)

	encrypted, err := es1.Encrypt("database-password")
	require.NoError(t, err)

	decrypted, err := es2.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "database-password", decrypted)
}

func TestEncryptionService_WrongKeyFails(t *testing.T) {
	es1, err := NewEncryptionService("key-one")
	require.NoError(t, err)
	es2, err := NewEncryptionService("key-two")
	require.NoError(t, err)

	encrypted, err := es1.Encrypt("secret")
	require.NoError(t, err)

	_, err = es2.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestEncryptValue_AddsPrefix(t *testing.T) {
	es, err := NewEncryptionService("test-master-key")
	require.NoError(t, err)

	encrypted, err := es.EncryptValue("sk-api-key")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encrypted, "encrypted:"))

	// 已加密的值不应被二次加密
	again, err := es.EncryptValue(encrypted)
	require.NoError(t, err)
	assert.Equal(t, encrypted, again)

	decrypted, err := es.DecryptValue(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "sk-api-key", decrypted)
}

func TestDecryptValue_PassthroughWithoutPrefix(t *testing.T) {
	es, err := NewEncryptionService("test-master-key")
	require.NoError(t, err)

	value, err := es.DecryptValue("plain-api-key")
	require.NoError(t, err)
	assert.Equal(t, "plain-api-key", value)
}
