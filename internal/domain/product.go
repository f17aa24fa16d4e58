package domain

// Product is a catalog item as supplied by the catalog source.
// SubCategory and Size are empty when absent.
type Product struct {
	ID          int64
	Name        string
	Category    string
	SubCategory string
	Brand       string
	Price       int
	Features    []string
	UseCase     []string
	Size        string
}

// ProductView is the wire projection of a recommended product
type ProductView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	SubCategory *string  `json:"sub_category"`
	Brand       string   `json:"brand"`
	Price       int      `json:"price"`
	Features    []string `json:"features"`
	UseCase     []string `json:"use_case"`
	Size        *string  `json:"size"`
}

// ScoredProduct pairs a product that survived ranking with its relevance score
type ScoredProduct struct {
	Product Product
	Score   int
}

// View projects the product for serialization. Absent optional fields
// serialize as null and tag lists are never nil.
func (p Product) View() ProductView {
	view := ProductView{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Brand:    p.Brand,
		Price:    p.Price,
		Features: nonNil(p.Features),
		UseCase:  nonNil(p.UseCase),
	}
	if p.SubCategory != "" {
		sub := p.SubCategory
		view.SubCategory = &sub
	}
	if p.Size != "" {
		size := p.Size
		view.Size = &size
	}
	return view
}

// Views projects a ranked product sequence, preserving order
func Views(products []Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, p.View())
	}
	return views
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
