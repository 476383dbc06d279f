package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"stockhub/internal/common"
)

// Claims are the token claims the backend cares about. The email claim is
// the owner identity every document is scoped to.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// OwnerID returns the owner identity, falling back to the token subject
// when no email claim is present.
func (c *Claims) OwnerID() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// AuthConfig verifies tokens against a shared HS256 secret.
func AuthConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey:     []byte(secret),
		NewClaimsFunc:  newClaims,
		SuccessHandler: storeOwner,
		ErrorHandler:   rejectToken,
	}
}

// JWKSAuthConfig verifies tokens against a remote JWKS endpoint, the mode
// used when sign-in is delegated to a hosted identity provider.
func JWKSAuthConfig(jwksURL string) (echojwt.Config, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			log.Printf("JWKS refresh failed: %v", err)
		},
	})
	if err != nil {
		return echojwt.Config{}, err
	}

	return echojwt.Config{
		KeyFunc:        jwks.Keyfunc,
		NewClaimsFunc:  newClaims,
		SuccessHandler: storeOwner,
		ErrorHandler:   rejectToken,
	}, nil
}

func newClaims(c echo.Context) jwt.Claims {
	return new(Claims)
}

func rejectToken(c echo.Context, err error) error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
}

// storeOwner copies the verified owner identity into the request context so
// services never read claims themselves.
func storeOwner(c echo.Context) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return
	}
	ctx := common.WithOwner(c.Request().Context(), claims.OwnerID())
	c.SetRequest(c.Request().WithContext(ctx))
}
