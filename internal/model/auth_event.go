package model

type AuthEventKind string

const (
	AuthEventSignIn AuthEventKind = "sign-in"
	AuthEventSignUp AuthEventKind = "sign-up"
)

// AuthEvent : событие успешной первичной аутентификации.
// Наблюдатели могут дописать Tokens, вызывающий обработчик добавит их в ответ.
type AuthEvent struct {
	Kind     AuthEventKind
	User     *User
	Metadata ClientMetadata
	Locale   string
	Tokens   *TokensPair
}
