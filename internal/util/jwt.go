package util

import (
	"course_market_backend/internal/config"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 身份提供方签发的会话令牌，sub 为用户 ID
type Claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

// IdentityVerifier 校验 Bearer 令牌并解析调用方身份
type IdentityVerifier struct {
	key     interface{}
	methods []string
	issuer  string
}

func NewIdentityVerifier(cfg *config.JWTConfig) (*IdentityVerifier, error) {
	v := &IdentityVerifier{issuer: cfg.Issuer}

	if cfg.PublicKey != "" {
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKey))
		if err != nil {
			return nil, err
		}
		v.key = pub
		v.methods = []string{jwt.SigningMethodRS256.Alg()}
		return v, nil
	}

	if cfg.Secret == "" {
		return nil, errors.New("either jwt.public_key or jwt.secret must be configured")
	}
	v.key = []byte(cfg.Secret)
	v.methods = []string{jwt.SigningMethodHS256.Alg()}
	return v, nil
}

func (v *IdentityVerifier) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(v.methods)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// GenerateJWT 使用 HS256 签发令牌，供本地调试和测试使用
func GenerateJWT(userID, name, secret string, expiration time.Duration) (string, error) {
	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
