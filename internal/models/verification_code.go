package models

import "time"

// VerificationCode — одноразовый код входа, привязанный к email.
//
// Для одного email активен не более одного кода: повторный запрос
// заменяет предыдущую запись (upsert). Код удаляется при успешном
// подтверждении и считается недействительным после ExpiresAt.
type VerificationCode struct {
	Email     string    // Электронная почта (уникальный ключ)
	Code      string    // 6-значный числовой код
	CreatedAt time.Time // Время создания
	ExpiresAt time.Time // Время истечения (15 минут после создания)
}
