package catalog

import (
	"strings"

	"github.com/skintellect/storefront/internal/model"
)

// Benefit is the display classification of a single ingredient.
type Benefit struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type benefitRule struct {
	terms   []string
	benefit Benefit
}

// Order matters: the first rule with a matching term wins.
var benefitRules = []benefitRule{
	{[]string{"retinol", "peptide", "retinoid", "bakuchiol"}, Benefit{"Renewal", "Promotes cell turnover and skin regeneration"}},
	{[]string{"hyaluronic", "glycerin", "aloe", "hydra"}, Benefit{"Hydration", "Deeply moisturizes and plumps skin"}},
	{[]string{"ceramide", "squalane", "shea", "barrier", "cholesterol"}, Benefit{"Barrier", "Strengthens and protects the skin barrier"}},
	{[]string{"oat", "centella", "green tea", "bisabolol", "niacinamide"}, Benefit{"Soothing", "Calms irritation and reduces redness"}},
	{[]string{"spf", "sun", "avobenzone", "octisalate", "homosalate", "octocrylene"}, Benefit{"Protection", "Shields from UV and environmental damage"}},
}

var essential = Benefit{"Essential", "Supports overall skin health"}

// IngredientBenefit classifies an ingredient by keyword.
func IngredientBenefit(ingredient string) Benefit {
	lower := strings.ToLower(ingredient)
	for _, rule := range benefitRules {
		for _, term := range rule.terms {
			if strings.Contains(lower, term) {
				return rule.benefit
			}
		}
	}
	return essential
}

// IngredientDetail is an ingredient annotated with its benefit.
type IngredientDetail struct {
	Name    string  `json:"name"`
	Benefit Benefit `json:"benefit"`
}

// ProductDetail is a product plus its classified ingredients.
type ProductDetail struct {
	model.Product
	IngredientDetails []IngredientDetail `json:"ingredientDetails"`
}

// Detail returns the product with per-ingredient benefits.
func (c *Catalog) Detail(id string) (ProductDetail, bool) {
	p, ok := c.Get(id)
	if !ok {
		return ProductDetail{}, false
	}
	details := make([]IngredientDetail, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		details = append(details, IngredientDetail{Name: ing, Benefit: IngredientBenefit(ing)})
	}
	return ProductDetail{Product: p, IngredientDetails: details}, true
}
