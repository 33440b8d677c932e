package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountInWords spells a peso amount in Spanish for contracts.
// Example: 1200000.50 -> "UN MILLÓN DOSCIENTOS MIL PESOS CON 50/100"
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	integerPart := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(integerPart)).Mul(decimal.NewFromInt(100)).Abs().IntPart()

	words := apocope(numberToWords(integerPart))
	currency := "PESOS"
	if integerPart == 1 {
		currency = "PESO"
	}
	return fmt.Sprintf("%s %s CON %02d/100", words, currency, cents)
}

// apocope shortens a trailing "UNO" before a noun: "VEINTIUNO MIL" -> "VEINTIÚN MIL"
func apocope(words string) string {
	switch {
	case strings.HasSuffix(words, "VEINTIUNO"):
		return strings.TrimSuffix(words, "VEINTIUNO") + "VEINTIÚN"
	case strings.HasSuffix(words, "UNO"):
		return strings.TrimSuffix(words, "UNO") + "UN"
	}
	return words
}

func numberToWords(n int64) string {
	switch {
	case n == 0:
		return "CERO"
	case n < 0:
		return "MENOS " + numberToWords(-n)
	case n < 10:
		return units[n]
	case n < 30:
		return specials[n]
	case n < 100:
		u, t := n%10, n/10
		if u == 0 {
			return tens[t]
		}
		return fmt.Sprintf("%s Y %s", tens[t], units[u])
	case n < 1000:
		h, rest := n/100, n%100
		if rest == 0 {
			return hundreds[h]
		}
		if h == 1 {
			return "CIENTO " + numberToWords(rest)
		}
		return fmt.Sprintf("%s %s", hundreds[h], numberToWords(rest))
	case n < 1_000_000:
		return scaled(n, 1000, "MIL", "MIL")
	case n < 1_000_000_000_000:
		return scaled(n, 1_000_000, "UN MILLÓN", "MILLONES")
	}
	return "NÚMERO MUY GRANDE"
}

// scaled writes n as <count> <unit> <rest>
func scaled(n, unit int64, single, plural string) string {
	count, rest := n/unit, n%unit
	head := single
	if count > 1 {
		head = apocope(numberToWords(count)) + " " + plural
	}
	if rest == 0 {
		return head
	}
	return head + " " + numberToWords(rest)
}

var units = []string{
	"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
}

var specials = map[int64]string{
	10: "DIEZ", 11: "ONCE", 12: "DOCE", 13: "TRECE", 14: "CATORCE", 15: "QUINCE",
	16: "DIECISÉIS", 17: "DIECISIETE", 18: "DIECIOCHO", 19: "DIECINUEVE",
	20: "VEINTE", 21: "VEINTIUNO", 22: "VEINTIDÓS", 23: "VEINTITRÉS", 24: "VEINTICUATRO",
	25: "VEINTICINCO", 26: "VEINTISÉIS", 27: "VEINTISIETE", 28: "VEINTIOCHO", 29: "VEINTINUEVE",
}

var tens = []string{
	"", "", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundreds = []string{
	"", "CIEN", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}
