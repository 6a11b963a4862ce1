package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// encryptedPrefix 标记配置值已加密
const encryptedPrefix = "encrypted:"

const keyDerivationIterations = 10000

var keyDerivationSalt = []byte("techpal-config-v1")

// EncryptionService 配置加密服务
type EncryptionService struct {
	key []byte
}

// NewEncryptionService 创建加密服务。
// masterKey为空时生成随机密钥，只能用于开发环境。
func NewEncryptionService(masterKey string) (*EncryptionService, error) {
	if masterKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate encryption key: %w", err)
		}
		fmt.Println("Warning: Using randomly generated encryption key. Set CONFIG_ENCRYPTION_KEY for production.")
		return &EncryptionService{key: key}, nil
	}

	// 从密码短语派生密钥，相同的短语总是得到相同的密钥
	key := pbkdf2.Key([]byte(masterKey), keyDerivationSalt, keyDerivationIterations, 32, sha256.New)
	return &EncryptionService{key: key}, nil
}

// Encrypt 加密数据
func (es *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(es.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt 解密数据
func (es *EncryptionService) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(es.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// EncryptValue 加密配置值并加上encrypted:前缀
func (es *EncryptionService) EncryptValue(value string) (string, error) {
	if value == "" || strings.HasPrefix(value, encryptedPrefix) {
		return value, nil
	}

	encrypted, err := es.Encrypt(value)
	if err != nil {
		return "", err
	}
	return encryptedPrefix + encrypted, nil
}

// DecryptValue 解密带encrypted:前缀的配置值，无前缀的值原样返回
func (es *EncryptionService) DecryptValue(value string) (string, error) {
	if !strings.HasPrefix(value, encryptedPrefix) {
		return value, nil
	}

	decrypted, err := es.Decrypt(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt config value: %w", err)
	}
	return decrypted, nil
}
