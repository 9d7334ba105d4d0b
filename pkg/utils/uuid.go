package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idSize     = 16
)

// GenerateID gera os ids locais das entidades sincronizadas
func GenerateID() (string, error) {
	return gonanoid.Generate(characters, idSize)
}
