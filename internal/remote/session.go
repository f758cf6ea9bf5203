package remote

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session хранит активную удалённую identity процесса.
// Токен выдаёт слой аутентификации (вне этой библиотеки); сессия лишь
// извлекает subject и срок действия, не проверяя подпись — проверка
// подписи это задача сервера.
type Session struct {
	mu          sync.RWMutex
	accessToken string
	userID      string
	expiresAt   time.Time
}

// NewSession creates an empty, unauthenticated session
func NewSession() *Session {
	return &Session{}
}

// SetToken installs the access token, extracting subject and expiry.
// Повторная установка того же токена — no-op.
func (s *Session) SetToken(accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accessToken == s.accessToken {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	// Подпись не проверяем: ключа у клиента нет, нужен только exp/sub
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return fmt.Errorf("failed to parse access token: %w", err)
	}

	s.accessToken = accessToken
	s.userID = claims.Subject
	if claims.ExpiresAt != nil {
		s.expiresAt = claims.ExpiresAt.Time
	} else {
		// Токен без exp считаем бессрочным
		s.expiresAt = time.Time{}
	}

	return nil
}

// Token returns the current access token.
// Returns ErrNotAuthenticated if no token is set, ErrTokenExpired if the
// token's expiry has passed.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.accessToken == "" {
		return "", ErrNotAuthenticated
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", ErrTokenExpired
	}
	return s.accessToken, nil
}

// UserID returns the subject of the current token, empty when signed out
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Authenticated reports whether a usable token is present
func (s *Session) Authenticated() bool {
	_, err := s.Token()
	return err == nil
}

// Clear signs the session out
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = ""
	s.userID = ""
	s.expiresAt = time.Time{}
}
