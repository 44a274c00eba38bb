package models

import (
	"strconv"
	"strings"
)

// DefaultPrimaryBenefit is the generic benefit used when nothing more specific is known.
const DefaultPrimaryBenefit = "general health support"

// SKURow represents one raw row of the uploaded SKU sheet
type SKURow struct {
	SKUID            string `json:"sku_id" parquet:"sku_id"`
	Name             string `json:"Name" parquet:"Name"`
	Brand            string `json:"brand" parquet:"brand"`
	DiscountCategory string `json:"product_discount_category" parquet:"product_discount_category"`
	Classifier1      string `json:"Classifier 1" parquet:"Classifier 1"`
	Classifier2      string `json:"classifier 2" parquet:"classifier 2"`
	Classifier3      string `json:"classifier 3" parquet:"classifier 3"`
}

// Classification is the three-level product taxonomy of a SKU
type Classification struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Type        string `json:"type"`
}

// Normalized returns the classification with surrounding space removed and upper-cased levels.
func (c Classification) Normalized() Classification {
	return Classification{
		Category:    strings.ToUpper(strings.TrimSpace(c.Category)),
		Subcategory: strings.ToUpper(strings.TrimSpace(c.Subcategory)),
		Type:        strings.ToUpper(strings.TrimSpace(c.Type)),
	}
}

// String renders the classification as a category chain
func (c Classification) String() string {
	return orUnspecified(c.Category) + " > " + orUnspecified(c.Subcategory) + " > " + orUnspecified(c.Type)
}

// Benefits represents the grounding context used to write review text
type Benefits struct {
	PrimaryBenefit    string   `json:"primary_benefit" jsonschema:"title=Primary benefit,description=Main benefit a customer notices."`
	Benefits          []string `json:"benefits" jsonschema:"title=Benefits,description=Up to three additional benefits."`
	MedicalConditions []string `json:"medical_conditions" jsonschema:"title=Medical conditions,description=Conditions the product is commonly bought for."`
	UsageNotes        string   `json:"usage_notes" jsonschema:"title=Usage notes,description=How the product is used."`
	TargetAudience    string   `json:"target_audience" jsonschema:"title=Target audience,description=Who buys this product."`
	Source            string   `json:"source" jsonschema:"title=Source,description=Where the analysis came from."`
	SpecificBenefits  []string `json:"specific_benefits,omitempty" jsonschema:"-"`
	RelevantKeywords  []string `json:"relevant_keywords,omitempty" jsonschema:"-"`
}

// IsGeneric reports whether the primary benefit is missing or the generic default
func (b Benefits) IsGeneric() bool {
	p := strings.TrimSpace(b.PrimaryBenefit)
	return p == "" || strings.EqualFold(p, DefaultPrimaryBenefit)
}

// Product is the immutable per-SKU context every review of the SKU is grounded on
type Product struct {
	SKUID            string
	SKUName          string
	Name             string
	Brand            string
	DiscountCategory string
	Classification   Classification
	Benefits         Benefits
}

// NewProduct builds a Product from a raw sheet row
func NewProduct(row SKURow) Product {
	brand := strings.TrimSpace(row.Brand)
	name := strings.TrimSpace(row.Name)
	return Product{
		SKUID:            strings.TrimSpace(row.SKUID),
		SKUName:          brand + " - " + name,
		Name:             name,
		Brand:            brand,
		DiscountCategory: strings.TrimSpace(row.DiscountCategory),
		Classification: Classification{
			Category:    strings.TrimSpace(row.Classifier1),
			Subcategory: strings.TrimSpace(row.Classifier2),
			Type:        strings.TrimSpace(row.Classifier3),
		},
	}
}

// ReviewRecord represents one generated review row
type ReviewRecord struct {
	SKUID    string `json:"sku_id" parquet:"sku_id"`
	SKUName  string `json:"sku_name" parquet:"sku_name"`
	Rating   int    `json:"rating" parquet:"rating"`
	Review   string `json:"review" parquet:"review"`
	PostDate string `json:"post_date" parquet:"post_date"`
	Username string `json:"username" parquet:"username"`
}

// Field returns the value of the named output column
func (r ReviewRecord) Field(column string) (string, bool) {
	switch column {
	case "sku_id":
		return r.SKUID, true
	case "sku_name":
		return r.SKUName, true
	case "rating":
		return strconv.Itoa(r.Rating), true
	case "review":
		return r.Review, true
	case "post_date":
		return r.PostDate, true
	case "username":
		return r.Username, true
	default:
		return "", false
	}
}

// Columns lists every column a ReviewRecord can be written with, in default order
var Columns = []string{"sku_id", "sku_name", "rating", "review", "post_date", "username"}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
