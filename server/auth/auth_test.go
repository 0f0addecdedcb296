package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/Daskott/rolodex/server/auth/key"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

func testKeyPair(t *testing.T) *key.KeyPair {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.Nil(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem(string(pemBytes))
	assert.Nil(t, err)

	return keyPair
}

func TestHashPassword(t *testing.T) {
	passwordHash, err := HashPassword("very-secure")
	assert.Nil(t, err)
	assert.NotEqual(t, "very-secure", passwordHash)

	assert.True(t, CheckPasswordHash("very-secure", passwordHash))
	assert.False(t, CheckPasswordHash("not-the-password", passwordHash))
}

func TestEncodeDecodeJWT(t *testing.T) {
	keyPair := testKeyPair(t)

	tokenString, err := EncodeJWT(NewTokenClaims("tony stark", "42"), keyPair)
	assert.Nil(t, err)
	assert.NotEmpty(t, tokenString)

	tokenClaims, err := DecodeJWT(tokenString, keyPair)
	assert.Nil(t, err)
	assert.Equal(t, "42", tokenClaims.Subject)
	assert.Equal(t, "tony stark", tokenClaims.Name)
}

func TestDecodeJWTRejectsExpiredToken(t *testing.T) {
	keyPair := testKeyPair(t)

	expiredClaims := RolodexTokenClaims{
		Name: "tony stark",
		StandardClaims: jwt.StandardClaims{
			Subject:   "42",
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}

	tokenString, err := EncodeJWT(expiredClaims, keyPair)
	assert.Nil(t, err)

	_, err = DecodeJWT(tokenString, keyPair)
	assert.NotNil(t, err, "Expected expired token to be rejected")
}

func TestDecodeJWTRejectsTokenFromAnotherKey(t *testing.T) {
	tokenString, err := EncodeJWT(NewTokenClaims("tony stark", "42"), testKeyPair(t))
	assert.Nil(t, err)

	_, err = DecodeJWT(tokenString, testKeyPair(t))
	assert.NotNil(t, err, "Expected token signed with a different key to be rejected")
}
