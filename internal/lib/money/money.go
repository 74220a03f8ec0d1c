// Package money содержит форматирование денежных сумм и пробегов
// для превью сделки: целая часть с разделителями тысяч, как в
// отчётах для покупателя ("$29,500").
package money

import "strconv"

// FormatUSD форматирует сумму в долларах с разделителями тысяч.
// Дробная часть отбрасывается, суммы в документах целые.
func FormatUSD(amount float64) string {
	return "$" + GroupDigits(int64(amount))
}

// GroupDigits возвращает число с запятыми между группами из трёх цифр.
func GroupDigits(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		var out []byte
		head := len(s) % 3
		if head > 0 {
			out = append(out, s[:head]...)
		}
		for i := head; i < len(s); i += 3 {
			if len(out) > 0 {
				out = append(out, ',')
			}
			out = append(out, s[i:i+3]...)
		}
		s = string(out)
	}
	if neg {
		return "-" + s
	}
	return s
}
