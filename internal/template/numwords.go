package template

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	units    = [...]string{"cero", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve"}
	teens    = [...]string{"diez", "once", "doce", "trece", "catorce", "quince", "dieciséis", "diecisiete", "dieciocho", "diecinueve"}
	twenties = [...]string{"veinte", "veintiuno", "veintidós", "veintitrés", "veinticuatro", "veinticinco",
		"veintiséis", "veintisiete", "veintiocho", "veintinueve"}
	tens     = [...]string{"", "", "", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa"}
	hundreds = [...]string{"", "ciento", "doscientos", "trescientos", "cuatrocientos", "quinientos",
		"seiscientos", "setecientos", "ochocientos", "novecientos"}
)

const (
	thousand = 1_000
	million  = 1_000_000
	billion  = 1_000_000_000_000

	// MaxAmount is the largest magnitude ParseAmount accepts and
	// FormatLegalPrice spells; larger inputs are clamped.
	MaxAmount = 999_999_999_999_999.99
)

// NumberToWords spells n as Spanish cardinal words, e.g. 21 -> "veintiuno",
// 1500000 -> "un millón quinientos mil". Negative numbers are prefixed
// with "menos".
func NumberToWords(n int64) string {
	if n < 0 {
		return "menos " + spell(uint64(-(n+1))+1)
	}
	return spell(uint64(n))
}

// FormatLegalPrice renders an amount in the notarial convention:
// integer part in uppercase words, then cents as a two-digit fraction.
// 1500000.50 -> "UN MILLÓN QUINIENTOS MIL PESOS 50/100 MONEDA NACIONAL".
func FormatLegalPrice(amount float64) string {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		amount = 0
	case amount > MaxAmount:
		amount = MaxAmount
	case amount < -MaxAmount:
		amount = -MaxAmount
	}
	negative := amount < 0
	totalCents := uint64(math.Round(math.Abs(amount) * 100))
	whole, cents := totalCents/100, totalCents%100

	words := apocope(spell(whole))
	if negative && totalCents > 0 {
		words = "menos " + words
	}
	currency := "PESOS"
	if whole == 1 {
		currency = "PESO"
	}
	return fmt.Sprintf("%s %s %02d/100 MONEDA NACIONAL", strings.ToUpper(words), currency, cents)
}

func spell(n uint64) string {
	if n == 0 {
		return units[0]
	}
	var parts []string
	if n >= billion {
		parts = append(parts, scale(n/billion, "un billón", "billones"))
		n %= billion
	}
	if n >= million {
		parts = append(parts, scale(n/million, "un millón", "millones"))
		n %= million
	}
	if n >= thousand {
		if q := n / thousand; q == 1 {
			parts = append(parts, "mil")
		} else {
			parts = append(parts, apocope(spellBelowThousand(q))+" mil")
		}
		n %= thousand
	}
	if n > 0 {
		parts = append(parts, spellBelowThousand(n))
	}
	return strings.Join(parts, " ")
}

func scale(q uint64, singular, plural string) string {
	if q == 1 {
		return singular
	}
	return apocope(spell(q)) + " " + plural
}

func spellBelowThousand(n uint64) string {
	if n == 100 {
		return "cien"
	}
	var parts []string
	if n >= 100 {
		parts = append(parts, hundreds[n/100])
		n %= 100
	}
	if n > 0 {
		parts = append(parts, spellBelowHundred(n))
	}
	return strings.Join(parts, " ")
}

func spellBelowHundred(n uint64) string {
	switch {
	case n < 10:
		return units[n]
	case n < 20:
		return teens[n-10]
	case n < 30:
		return twenties[n-20]
	case n%10 == 0:
		return tens[n/10]
	default:
		return tens[n/10] + " y " + units[n%10]
	}
}

// apocope shortens a trailing "uno" before a noun: "veintiuno" -> "veintiún",
// "treinta y uno" -> "treinta y un".
func apocope(words string) string {
	switch {
	case strings.HasSuffix(words, "veintiuno"):
		return strings.TrimSuffix(words, "veintiuno") + "veintiún"
	case words == "uno" || strings.HasSuffix(words, " uno"):
		return strings.TrimSuffix(words, "o")
	default:
		return words
	}
}

// ParseAmount reads a monetary amount, tolerating a currency sign,
// thousands separators and surrounding text such as "MXN". Non-finite
// values and magnitudes above MaxAmount are rejected.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "", "MXN", "", "mxn", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxAmount {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	return v, nil
}
