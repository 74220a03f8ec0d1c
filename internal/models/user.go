// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и роль.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет пользователя системы.
//
// Учётная запись создаётся лениво при первом успешном подтверждении
// одноразового кода (find-or-create), пароль — общий сервисный секрет.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта (уникальная)
	Username     string    // Отображаемое имя
	PasswordHash string    // bcrypt-хэш сервисного пароля
	Role         string    // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата создания учётной записи
}

// RoleAdmin и RoleUser — допустимые значения поля Role.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TokenPair содержит пару access/refresh токенов, выдаваемую при входе.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}
