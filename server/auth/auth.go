package auth

import (
	"fmt"
	"time"

	"github.com/Daskott/rolodex/server/auth/key"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// TOKEN_VALIDITY_PERIOD is how long an issued session token stays valid
const TOKEN_VALIDITY_PERIOD = 24 * time.Hour

type RolodexTokenClaims struct {
	Name string `json:"name"`
	jwt.StandardClaims
}

// NewTokenClaims returns session claims for the given user,
// with the user's id as subject & the default expiry applied.
func NewTokenClaims(name, subject string) RolodexTokenClaims {
	now := time.Now()

	return RolodexTokenClaims{
		Name: name,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TOKEN_VALIDITY_PERIOD).Unix(),
		},
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims RolodexTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*RolodexTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RolodexTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*RolodexTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to RolodexTokenClaims")
	}

	return tokenClaims, nil
}
