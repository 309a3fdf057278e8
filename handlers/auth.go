package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/taskade/taskade-backend/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tokenLifetime matches the frontend's session expectations.
const tokenLifetime = 24 * time.Hour

// emailKey is where the guard stores the verified identity on the gin
// context for downstream handlers.
const emailKey = "email"

// userCollection is the slice of *mongo.Collection the auth handler needs.
type userCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{},
		opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type AuthHandler struct {
	ctx    context.Context
	users  userCollection
	secret []byte
}

func NewAuthHandler(ctx context.Context, users userCollection, secret []byte) *AuthHandler {
	return &AuthHandler{
		ctx:    ctx,
		users:  users,
		secret: secret,
	}
}

// IssueToken signs an access token for the given email. Never fails on
// input: the email is encoded as-is.
func (handler *AuthHandler) IssueToken(email string) (string, error) {
	now := time.Now()
	claims := &model.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secret)
}

// VerifyToken checks signature and expiry and returns the embedded claims.
func (handler *AuthHandler) VerifyToken(tokenString string) (*model.Claims, error) {
	claims := &model.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return handler.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// UpsertUserHandler - PUT /users/:email
// Stores (or fully replaces) the profile document for the email and hands
// back a fresh access token. This is the login route: create-if-absent is
// intended here.
func (handler *AuthHandler) UpsertUserHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	email := c.Param("email")

	// The profile payload is schema-less: whatever the client sends is set
	// on the user document.
	var user bson.M
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := bson.M{"email": email}
	update := bson.M{"$set": user}
	result, err := handler.users.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := handler.IssueToken(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": gin.H{
			"matchedCount":  result.MatchedCount,
			"modifiedCount": result.ModifiedCount,
			"upsertedId":    result.UpsertedID,
		},
		"token": token,
	})
}

// AuthMiddleware guards a route group: a missing Authorization header is
// rejected before any backend work, a present but unverifiable bearer token
// gets 403. The verified email is stored on the context but never compared
// against route parameters.
func (handler *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized Access"})
			return
		}

		var tokenString string
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 {
			tokenString = parts[1]
		}

		claims, err := handler.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden Access"})
			return
		}

		c.Set(emailKey, claims.Email)
		c.Next()
	}
}
