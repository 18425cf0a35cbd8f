// Package auth проверяет bearer-токены запросов к comments-service.
//
// Токены выпускает внешний сервис аутентификации; здесь только проверка
// подписи HS256, срока действия и издателя, а также извлечение снимка автора
// (sub, name, role). Issue нужен для локальной разработки и тестов.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pribylovaa/bragboard/internal/models"
)

var (
	// ErrInvalidToken — подпись, алгоритм, издатель или claims не прошли проверку.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
)

const leeway = 5 * time.Second

type claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier проверяет и (для инструментов) выпускает токены.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// New создаёт Verifier с общим секретом и ожидаемым издателем.
func New(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Verify проверяет токен и возвращает автора запроса.
func (v *Verifier) Verify(token string) (models.Author, error) {
	const op = "auth/Verify"

	token = strings.TrimSpace(token)
	if token == "" {
		return models.Author{}, fmt.Errorf("%s: empty token: %w", op, ErrInvalidToken)
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Author{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return models.Author{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || strings.TrimSpace(c.Subject) == "" {
		return models.Author{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return models.Author{ID: c.Subject, Name: c.Name, Role: c.Role}, nil
}

// Issue выпускает токен для автора со сроком ttl.
func (v *Verifier) Issue(a models.Author, ttl time.Duration) (string, error) {
	const op = "auth/Issue"

	if strings.TrimSpace(a.ID) == "" {
		return "", fmt.Errorf("%s: empty subject", op)
	}

	if ttl <= 0 {
		return "", fmt.Errorf("%s: ttl must be > 0", op)
	}

	now := v.now().UTC()
	c := claims{
		Name: a.Name,
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}
