package auth

// TokenIssuer verifies submitted passwords and mints tokens for the
// matching user.
type TokenIssuer struct {
	tokens    *TokenService
	passwords PasswordAuthenticator
	logger    Logger
}

// NewTokenIssuer returns a TokenIssuer. A nil PasswordAuthenticator means
// bcrypt.
func NewTokenIssuer(tokens *TokenService, passwords PasswordAuthenticator, logger Logger) *TokenIssuer {
	if passwords == nil {
		passwords = BcryptAuthenticator{}
	}
	if logger == nil {
		logger = defLogger()
	}
	return &TokenIssuer{
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// CreateUserToken checks req's password against user's stored hash and
// returns a signed token carrying the user ID. A nil user, an empty
// password, or a mismatch all yield ErrInvalidCredentials.
func (i *TokenIssuer) CreateUserToken(req PasswordPayload, user *User) (string, error) {
	validPassword := false
	if req != nil && req.GetPassword() != "" && user != nil {
		validPassword = i.passwords.ComparePasswordAndHash(req.GetPassword(), user.PasswordHash) == nil
	}

	if user == nil || !validPassword {
		i.logger.Debug("CreateUserToken rejected credentials", "user_found", user != nil)
		return "", ErrInvalidCredentials.Clone()
	}

	token, err := i.tokens.SignClaims(NewJWTClaims(user.ID))
	if err != nil {
		i.logger.Error("CreateUserToken failed to sign token", "user_id", user.ID, "error", err)
		return "", err
	}

	return token, nil
}
