package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

type PriceKind int

const (
	PriceNone PriceKind = iota
	PriceSingle
	PricePair
)

// Price is either a single amount, a single/double sided pair, or nothing.
// It encodes to a JSON number, {"single":x,"double":y} or null.
type Price struct {
	Kind   PriceKind
	Amount float64
	Single float64
	Double float64
}

type pricePair struct {
	Single float64 `json:"single"`
	Double float64 `json:"double"`
}

func SinglePrice(amount float64) Price {
	return Price{Kind: PriceSingle, Amount: amount}
}

func PairPrice(single float64, double float64) Price {
	return Price{Kind: PricePair, Single: single, Double: double}
}

func (p Price) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PriceSingle:
		return json.Marshal(p.Amount)
	case PricePair:
		return json.Marshal(pricePair{Single: p.Single, Double: p.Double})
	default:
		return []byte("null"), nil
	}
}

func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*p = Price{}
	case trimmed[0] == '{':
		var pair pricePair
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return err
		}
		*p = PairPrice(pair.Single, pair.Double)
	default:
		var amount float64
		if err := json.Unmarshal(trimmed, &amount); err != nil {
			return fmt.Errorf("price: %w", err)
		}
		*p = SinglePrice(amount)
	}
	return nil
}

// ResolvePrice returns the price advertised by the product's extension.
func ResolvePrice(p Product) Price {
	switch v := p.Variant.(type) {
	case LifeProduct:
		return SinglePrice(v.Price)
	case StationaryProduct:
		return SinglePrice(v.Price)
	case PhotographyService:
		return PairPrice(v.SingleSidePrice, v.DoubleSidePrice)
	case Publication:
		return SinglePrice(v.Price)
	}
	return Price{}
}

// UnitPrice is the per-unit price charged for a sale. Photography services
// charge the double sided rate unless isSingleSided is set. A product
// without an extension sells at zero.
func UnitPrice(p Product, isSingleSided *bool) float64 {
	price := ResolvePrice(p)
	switch price.Kind {
	case PriceSingle:
		return price.Amount
	case PricePair:
		if isSingleSided != nil && *isSingleSided {
			return price.Single
		}
		return price.Double
	}
	return 0
}

// RoundMoney rounds to cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
