package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// NormalizeCPF strips every non-digit character from a CPF.
func NormalizeCPF(raw string) string {
	var b strings.Builder
	b.Grow(11)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether the CPF is structurally valid: 11 digits, not all
// the same digit, and matching both check digits.
func ValidCPF(raw string) bool {
	num := NormalizeCPF(raw)
	if len(num) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < len(num); i++ {
		if num[i] != num[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	d1 := checkDigit(num, 9)
	d2 := checkDigit(num, 10)

	return d1 == int(num[9]-'0') && d2 == int(num[10]-'0')
}

// checkDigit computes the verification digit over the first sliceLen digits.
func checkDigit(num string, sliceLen int) int {
	sum := 0
	for i := 0; i < sliceLen; i++ {
		sum += int(num[i]-'0') * (sliceLen + 1 - i)
	}
	mod := (sum * 10) % 11
	if mod == 10 {
		return 0
	}
	return mod
}

// RegisterCPF adds the "cpf" struct tag to a validator instance.
func RegisterCPF(v *validator.Validate) error {
	return v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return ValidCPF(fl.Field().String())
	})
}
