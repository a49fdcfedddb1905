// Package odds converts between American odds, decimal odds, implied
// probability (0-100) and Kalshi contract prices (0-100 cents).
//
// Integer results use math.Round (half away from zero). Inputs a conversion is
// not defined for return a *DomainError instead of an infinity.
package odds

import "math"

// AmericanToDecimal converts American odds to decimal odds.
// +150 -> 2.50, -150 -> 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, domainErr("AmericanToDecimal", 0, "american odds cannot be 0")
	}
	if american > 0 {
		return float64(american)/100 + 1, nil
	}
	return 100/float64(-american) + 1, nil
}

// DecimalToAmerican converts decimal odds to American odds.
// 2.50 -> +150, 1.91 -> -110. Decimal 2.0 maps to +100.
func DecimalToAmerican(decimal float64) (int, error) {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) || decimal <= 1 {
		return 0, domainErr("DecimalToAmerican", decimal, "decimal odds must be finite and > 1")
	}
	if decimal >= 2 {
		return int(math.Round((decimal - 1) * 100)), nil
	}
	return int(math.Round(-100 / (decimal - 1))), nil
}

// DecimalToProbability returns the implied probability (0-100) of decimal odds.
func DecimalToProbability(decimal float64) (float64, error) {
	if math.IsNaN(decimal) || decimal <= 0 {
		return 0, domainErr("DecimalToProbability", decimal, "decimal odds must be > 0")
	}
	return 100 / decimal, nil
}

// AmericanToProbability returns the implied probability (0-100) of American odds.
func AmericanToProbability(american int) (float64, error) {
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return DecimalToProbability(decimal)
}

// ProbabilityToDecimal converts a probability in (0, 100] to decimal odds.
func ProbabilityToDecimal(probability float64) (float64, error) {
	if math.IsNaN(probability) || probability <= 0 || probability > 100 {
		return 0, domainErr("ProbabilityToDecimal", probability, "probability must be in (0, 100]")
	}
	return 100 / probability, nil
}

// KalshiPriceToProbability maps a contract price in cents to a probability.
// A price of 65 ($0.65) is a 65% implied probability.
func KalshiPriceToProbability(price int) float64 {
	return float64(price)
}

// ProbabilityToKalshiPrice rounds a probability to the nearest cent price.
func ProbabilityToKalshiPrice(probability float64) (int, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 100 {
		return 0, domainErr("ProbabilityToKalshiPrice", probability, "probability must be in [0, 100]")
	}
	return int(math.Round(probability)), nil
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
