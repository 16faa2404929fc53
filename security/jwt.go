package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidToken = errors.New("invalid token")

type UserClaims struct {
	ID   primitive.ObjectID `json:"id"`
	Role models.Role        `json:"role"`
	jwt.StandardClaims
}

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	ID   primitive.ObjectID
	Role models.Role
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) NewAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := UserClaims{
		ID:   user.ID,
		Role: user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return accessToken.SignedString(m.secret)
}

func (m *TokenManager) ParseAccessToken(accessToken string) (*UserClaims, error) {
	parsedAccessToken, err := jwt.ParseWithClaims(accessToken, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsedAccessToken.Claims.(*UserClaims)
	if !ok || !parsedAccessToken.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// bearerClaims parses the Authorization header. On failure it returns the
// message to send with a 401.
func (m *TokenManager) bearerClaims(r *http.Request) (*UserClaims, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "Authorization header missing"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "Invalid token format"
	}

	claims, err := m.ParseAccessToken(parts[1])
	if err != nil {
		return nil, "Invalid token"
	}
	return claims, ""
}

// AuthMiddleware requires a bearer token and stores the caller's Principal
// exactly as the token's claims describe it.
func (m *TokenManager) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, msg := m.bearerClaims(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, msg)
			return
		}
		ctx := WithPrincipal(r.Context(), Principal{ID: claims.ID, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserLookup loads the stored account behind a token.
type UserLookup interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Authenticate is AuthMiddleware checked against the stored account: deleted
// users get 401, deactivated users 403, and the stored role replaces the
// role carried in the token.
func (m *TokenManager) Authenticate(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, msg := m.bearerClaims(r)
			if claims == nil {
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			user, err := users.GetUser(r.Context(), claims.ID)
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Unknown user")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !user.IsActive {
				writeError(w, http.StatusForbidden, "account is deactivated")
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{ID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleRequired lets the request through only for the listed roles.
func RoleRequired(next http.HandlerFunc, roles ...models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		for _, role := range roles {
			if p.Role == role {
				next(w, r)
				return
			}
		}
		writeError(w, http.StatusForbidden, "Access forbidden: insufficient role")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
