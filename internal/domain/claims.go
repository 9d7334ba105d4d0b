package domain

import "github.com/golang-jwt/jwt/v5"

// Papéis aceitos nos tokens de operador
const (
	RoleAdmin    = 1
	RoleOperator = 2
	RoleViewer   = 3
)

// Claims identifica o operador autenticado na superfície HTTP
type Claims struct {
	OperatorID string `json:"operator_id"`
	RoleID     int    `json:"role_id"`
	jwt.RegisteredClaims
}
