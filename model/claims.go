package model

import "github.com/golang-jwt/jwt/v5"

// Claims carried inside the access token. Email is the only identity the
// system knows about.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
