package service

import "time"

func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *AuthenticationService) SetClock(now func() time.Time) {
	s.now = now
}
