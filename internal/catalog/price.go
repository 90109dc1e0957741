package catalog

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// maxPrice is the largest value the decimal(12,2) price column holds.
const maxPrice = 9999999999.99

var (
	errMissingPrice  = errors.New("title and price required")
	errInvalidPrice  = errors.New("price must be a non-negative number")
	errPriceTooLarge = errors.New("price must not exceed 9999999999.99")
)

// parsePrice accepts decoded JSON numbers and numeric strings.
func parsePrice(value any) (float64, error) {
	var price float64
	switch v := value.(type) {
	case nil:
		return 0, errMissingPrice
	case float64:
		price = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, errInvalidPrice
		}
		price = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errInvalidPrice
		}
		price = parsed
	default:
		return 0, errInvalidPrice
	}

	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, errInvalidPrice
	}
	if math.Round(price*100)/100 > maxPrice {
		return 0, errPriceTooLarge
	}
	return price, nil
}
