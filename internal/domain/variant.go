package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProductVariant is the category extension of a product. The four
// implementations below are the only ones; a product carries exactly one.
type ProductVariant interface {
	Category() Category
	variant()
}

type LifeProduct struct {
	Price        float64    `json:"price" validate:"gt=0"`
	Type         string     `json:"type" validate:"required"`
	Manufacturer string     `json:"manufacturer" validate:"required"`
	ExpiryDate   *time.Time `json:"expiryDate"`
}

type StationaryProduct struct {
	Price float64 `json:"price" validate:"gt=0"`
	Type  string  `json:"type" validate:"required"`
}

type PhotographyService struct {
	SingleSidePrice float64 `json:"singleSidePrice" validate:"gt=0"`
	DoubleSidePrice float64 `json:"doubleSidePrice" validate:"gt=0"`
	ServiceType     string  `json:"serviceType"`
}

type Publication struct {
	Price     float64 `json:"price" validate:"gt=0"`
	Author    string  `json:"author" validate:"required"`
	Publisher string  `json:"publisher" validate:"required"`
	ISBN      string  `json:"isbn" validate:"required"`
}

func (LifeProduct) Category() Category        { return CategoryLifeProducts }
func (StationaryProduct) Category() Category  { return CategoryStationary }
func (PhotographyService) Category() Category { return CategoryPhotography }
func (Publication) Category() Category        { return CategoryPublications }

func (LifeProduct) variant()        {}
func (StationaryProduct) variant()  {}
func (PhotographyService) variant() {}
func (Publication) variant()        {}

// productWire is the JSON shape of a product: base fields, the resolved
// price and exactly one populated extension object.
type productWire struct {
	ProductID          string              `json:"productId"`
	Name               string              `json:"name"`
	Category           Category            `json:"category"`
	StockQuantity      int                 `json:"stockQuantity"`
	Rating             *float64            `json:"rating"`
	Price              Price               `json:"price"`
	LifeProduct        *LifeProduct        `json:"lifeProduct,omitempty"`
	StationaryProduct  *StationaryProduct  `json:"stationaryProduct,omitempty"`
	PhotographyService *PhotographyService `json:"photographyService,omitempty"`
	Publication        *Publication        `json:"publication,omitempty"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	w := productWire{
		ProductID:     p.ProductID,
		Name:          p.Name,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		Rating:        p.Rating,
		Price:         ResolvePrice(p),
	}
	switch v := p.Variant.(type) {
	case LifeProduct:
		w.LifeProduct = &v
	case StationaryProduct:
		w.StationaryProduct = &v
	case PhotographyService:
		w.PhotographyService = &v
	case Publication:
		w.Publication = &v
	}
	return json.Marshal(w)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var variants []ProductVariant
	if w.LifeProduct != nil {
		variants = append(variants, *w.LifeProduct)
	}
	if w.StationaryProduct != nil {
		variants = append(variants, *w.StationaryProduct)
	}
	if w.PhotographyService != nil {
		variants = append(variants, *w.PhotographyService)
	}
	if w.Publication != nil {
		variants = append(variants, *w.Publication)
	}
	if len(variants) > 1 {
		return fmt.Errorf("product %s carries %d extensions", w.ProductID, len(variants))
	}

	*p = Product{
		ProductID:     w.ProductID,
		Name:          w.Name,
		Category:      w.Category,
		StockQuantity: w.StockQuantity,
		Rating:        w.Rating,
	}
	if len(variants) == 1 {
		p.Variant = variants[0]
	}
	return nil
}
