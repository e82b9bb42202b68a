package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/produccion-api/internal/application/dto"
	"github.com/jhoicas/produccion-api/internal/domain"
	"github.com/jhoicas/produccion-api/internal/domain/entity"
	"github.com/jhoicas/produccion-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login contra las cuentas estáticas del panel.
type AuthUseCase struct {
	accounts map[string]entity.Account
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth. Rechaza roles desconocidos y logins repetidos.
func NewAuthUseCase(accounts []entity.Account, jwtCfg JWTConfig) (*AuthUseCase, error) {
	byLogin := make(map[string]entity.Account, len(accounts))
	for _, a := range accounts {
		login := strings.ToLower(strings.TrimSpace(a.Login))
		if a.Role != entity.RoleAdmin && a.Role != entity.RoleWorkshop {
			return nil, fmt.Errorf("auth: rol %q inválido para %s", a.Role, login)
		}
		if _, dup := byLogin[login]; dup {
			return nil, fmt.Errorf("auth: cuenta %s repetida", login)
		}
		a.Login = login
		if a.Name == "" {
			a.Name = login
		}
		byLogin[login] = a
	}
	return &AuthUseCase{accounts: byLogin, jwtCfg: jwtCfg}, nil
}

// Login verifica login/password, genera JWT y retorna token + cuenta.
// Cuenta inexistente y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	login := strings.ToLower(strings.TrimSpace(in.Login))
	if login == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: login y password son requeridos", domain.ErrInvalidInput)
	}
	acc, ok := uc.accounts[login]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, exp, err := jwt.Generate(uc.jwtCfg.Secret, acc.Login, acc.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		Account:   toAccountResponse(acc),
	}, nil
}

// Account devuelve la cuenta por login (para /auth/me).
func (uc *AuthUseCase) Account(login string) (*dto.AccountResponse, error) {
	acc, ok := uc.accounts[strings.ToLower(login)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := toAccountResponse(acc)
	return &out, nil
}

func toAccountResponse(a entity.Account) dto.AccountResponse {
	return dto.AccountResponse{Login: a.Login, Name: a.Name, Role: a.Role}
}
