package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbol is a token denomination: a short uppercase code plus the number of
// decimal places its amounts are scaled by.
type Symbol struct {
	Code      string
	Precision uint8
}

// ParseSymbol parses the "precision,CODE" form, e.g. "8,WAX".
func ParseSymbol(raw string) (Symbol, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("invalid symbol %q: want \"precision,CODE\"", raw)
	}
	prec, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || prec > 18 {
		return Symbol{}, fmt.Errorf("invalid symbol precision in %q", raw)
	}
	code := parts[1]
	if err := validateSymbolCode(code); err != nil {
		return Symbol{}, err
	}
	return Symbol{Code: code, Precision: uint8(prec)}, nil
}

func validateSymbolCode(code string) error {
	if code == "" || len(code) > 7 {
		return fmt.Errorf("symbol code %q must be 1-7 characters", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("symbol code %q must be uppercase A-Z", code)
		}
	}
	return nil
}

func (s Symbol) String() string {
	return strconv.FormatUint(uint64(s.Precision), 10) + "," + s.Code
}

// Equal reports whether code and precision both match.
func (s Symbol) Equal(o Symbol) bool { return s.Code == o.Code && s.Precision == o.Precision }

// IsZero reports whether the symbol is unset.
func (s Symbol) IsZero() bool { return s.Code == "" }

// unit returns the scale factor for one whole token, e.g. 1e8 for precision 8.
func (s Symbol) unit() int64 {
	u := int64(1)
	for i := uint8(0); i < s.Precision; i++ {
		u *= 10
	}
	return u
}

// Asset is a fixed-point token quantity: Amount base units scaled by the
// symbol's precision. "1.00000000 WAX" is Asset{Amount: 1e8, Symbol: 8,WAX}.
type Asset struct {
	Amount int64
	Symbol Symbol
}

// ParseAsset parses the "1.00000000 WAX" wire form. The number of fractional
// digits fixes the precision; it must be written out in full.
func ParseAsset(raw string) (Asset, error) {
	fields := strings.Fields(raw)
	if len(fields) != 2 {
		return Asset{}, fmt.Errorf("invalid asset %q: want \"amount CODE\"", raw)
	}
	if err := validateSymbolCode(fields[1]); err != nil {
		return Asset{}, err
	}

	num := fields[0]
	neg := strings.HasPrefix(num, "-")
	num = strings.TrimPrefix(num, "-")

	intPart, fracPart, _ := strings.Cut(num, ".")
	if intPart == "" {
		return Asset{}, fmt.Errorf("invalid asset amount %q", fields[0])
	}
	if len(fracPart) > 18 {
		return Asset{}, fmt.Errorf("asset %q precision exceeds 18", raw)
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Asset{}, fmt.Errorf("invalid asset amount %q: %w", fields[0], err)
	}
	sym := Symbol{Code: fields[1], Precision: uint8(len(fracPart))}
	amount := whole * sym.unit()
	if fracPart != "" {
		frac, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return Asset{}, fmt.Errorf("invalid asset amount %q: %w", fields[0], err)
		}
		amount += frac
	}
	if neg {
		amount = -amount
	}
	return Asset{Amount: amount, Symbol: sym}, nil
}

func (a Asset) String() string {
	neg := a.Amount < 0
	amt := a.Amount
	if neg {
		amt = -amt
	}
	unit := a.Symbol.unit()
	whole := amt / unit
	out := strconv.FormatInt(whole, 10)
	if a.Symbol.Precision > 0 {
		frac := strconv.FormatInt(amt%unit, 10)
		out += "." + strings.Repeat("0", int(a.Symbol.Precision)-len(frac)) + frac
	}
	if neg {
		out = "-" + out
	}
	return out + " " + a.Symbol.Code
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Asset) IsPositive() bool { return a.Amount > 0 }

// Add returns a+b. The symbols must match.
func (a Asset) Add(b Asset) (Asset, error) {
	if !a.Symbol.Equal(b.Symbol) {
		return Asset{}, fmt.Errorf("symbol mismatch: %s vs %s", a.Symbol, b.Symbol)
	}
	return Asset{Amount: a.Amount + b.Amount, Symbol: a.Symbol}, nil
}

// Sub returns a-b. The symbols must match.
func (a Asset) Sub(b Asset) (Asset, error) {
	if !a.Symbol.Equal(b.Symbol) {
		return Asset{}, fmt.Errorf("symbol mismatch: %s vs %s", a.Symbol, b.Symbol)
	}
	return Asset{Amount: a.Amount - b.Amount, Symbol: a.Symbol}, nil
}

// Zero returns a zero-amount asset in the given denomination.
func Zero(sym Symbol) Asset { return Asset{Amount: 0, Symbol: sym} }
