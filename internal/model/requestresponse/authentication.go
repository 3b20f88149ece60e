package requestresponse

import "bearer-auth-server/internal/model"

// SignInRequest : тело запроса на вход по email и паролю
type SignInRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// SignUpRequest : тело запроса на регистрацию
type SignUpRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
	Name     string `json:"name" example:"Jane"`
}

// UserView : базовые поля пользователя, которые отдаются клиенту
type UserView struct {
	ID            string `json:"id" example:"3F2504E0-4F89-11D3-9A0C-0305E82C3301"`
	Email         string `json:"email" example:"user@example.com"`
	Name          string `json:"name" example:"Jane"`
	EmailVerified bool   `json:"emailVerified" example:"false"`
	Image         string `json:"image,omitempty" example:"avatars/jane.png"`
}

// UserViewFromModel : конвертирует model.User в UserView
func UserViewFromModel(user *model.User) UserView {
	return UserView{
		ID:            user.UUID,
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
		Image:         user.Image,
	}
}

// SignInResponse : ответ на успешную аутентификацию.
// Токены присутствуют, если их удалось выпустить.
type SignInResponse struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"accessToken,omitempty" example:"eyJhbGciOiJFZERTQSJ9..."`
	RefreshToken string   `json:"refreshToken,omitempty" example:"vcSi0369y1I62wOpxZFpgZ..."`
	TokenType    string   `json:"tokenType,omitempty" example:"Bearer"`
}

// RefreshTokenRequest : запрос на обновление пары токенов и на отзыв refresh-токена
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" example:"vcSi0369y1I62wOpxZFpgZ..."`
}

// TokensResponse : пара токенов
type TokensResponse struct {
	AccessToken  string `json:"accessToken" example:"eyJhbGciOiJFZERTQSJ9..."`
	RefreshToken string `json:"refreshToken" example:"vcSi0369y1I62wOpxZFpgZ..."`
	TokenType    string `json:"tokenType" example:"Bearer"`
}

// TokensResponseFromModel : конвертирует model.TokensPair в TokensResponse
func TokensResponseFromModel(pair *model.TokensPair) TokensResponse {
	return TokensResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	}
}

// RevokeResponse : ответ на отзыв токена, всегда success=true
type RevokeResponse struct {
	Success bool `json:"success" example:"true"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid or expired access token."`
	Code  string `json:"code,omitempty" example:"JWT_EXPIRED"`
}

// ProfileResponse : профиль текущего пользователя
type ProfileResponse struct {
	User model.Principal `json:"user"`
}

// Post : демонстрационный защищенный ресурс
type Post struct {
	ID    int    `json:"id" example:"1"`
	Title string `json:"title" example:"Hello World"`
}

// PostsResponse : список демонстрационных постов
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// HealthResponse : ответ health-check
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
