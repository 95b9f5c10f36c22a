package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	csrfCookieName = "_csrf_token"
	csrfFormField  = "_csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfContextKey = "CSRFToken"
)

// CSRFConfig configures the CSRF middleware.
type CSRFConfig struct {
	Secret string
	// CookiePath scopes the token cookie, normally the application base path.
	// Empty means "/".
	CookiePath string
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// csrfSigner issues and verifies tokens of the form hex(nonce) "." base64url(hmac).
type csrfSigner struct {
	key []byte
}

func (s csrfSigner) sign(nonce string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (s csrfSigner) issue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	nonce := hex.EncodeToString(b)
	return nonce + "." + s.sign(nonce), nil
}

func (s csrfSigner) verify(token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(s.sign(nonce)))
}

// CSRF protects the HTML pages with a double-submit token. Safe methods get a
// signed token cookie (reissued when missing or forged) and the token in the
// gin context for templates. Unsafe methods must echo the cookie value in the
// "_csrf_token" form field or the X-CSRF-Token header, or they are rejected
// with 403. The JSON API is not wrapped by this middleware.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "csrf secret is required"})
		}
	}
	signer := csrfSigner{key: []byte(secret)}
	path := cfg.CookiePath
	if path == "" {
		path = "/"
	}

	return func(c *gin.Context) {
		cookie, _ := c.Cookie(csrfCookieName)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			if !signer.verify(cookie) {
				token, err := signer.issue()
				if err != nil {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to generate CSRF token"})
					return
				}
				cookie = token
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     path,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
		default:
			sent := c.PostForm(csrfFormField)
			if sent == "" {
				sent = c.GetHeader(csrfHeaderName)
			}
			if cookie == "" || sent == "" {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token missing"})
				return
			}
			if !signer.verify(cookie) || !hmac.Equal([]byte(cookie), []byte(sent)) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token invalid"})
				return
			}
		}

		c.Set(csrfContextKey, cookie)
		c.Next()
	}
}

// GetCSRFToken returns the token stored by CSRF, or "".
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}
