// Package catalog holds the dishes a client can browse and add to a cart.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-freshbite.git/internal/cart"
	"github.com/shopspring/decimal"
)

var ErrItemNotFound = errors.New("menu item not found")

type MenuItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Rating       float64         `json:"rating"`
	CookTime     string          `json:"cookTime"`
	Category     string          `json:"category"`
	IsPopular    bool            `json:"isPopular,omitempty"`
	IsVegetarian bool            `json:"isVegetarian,omitempty"`
	IsSpicy      bool            `json:"isSpicy,omitempty"`
}

func (m MenuItem) CategoryName() string { return m.Category }

// CartItem is the line added when a client picks this dish.
func (m MenuItem) CartItem(instructions string) cart.Item {
	return cart.Item{
		ID:                  m.ID,
		Name:                m.Name,
		Price:               m.Price,
		Image:               m.Image,
		Quantity:            1,
		Category:            m.Category,
		SpecialInstructions: instructions,
	}
}

// Source lists the menu. Implementations return items in a stable order.
type Source interface {
	Items(ctx context.Context) ([]MenuItem, error)
}

// Find looks an item up by id.
func Find(ctx context.Context, src Source, id string) (MenuItem, error) {
	items, err := src.Items(ctx)
	if err != nil {
		return MenuItem{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return MenuItem{}, ErrItemNotFound
}

// Static serves a fixed list.
type Static []MenuItem

func (s Static) Items(context.Context) ([]MenuItem, error) {
	out := make([]MenuItem, len(s))
	copy(out, s)
	return out, nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const img = "https://images.unsplash.com/photo-%s?w=400&h=300&fit=crop"

// Seed is the house menu.
func Seed() Static {
	return Static{
		{
			ID:          "1",
			Name:        "Gourmet Burger Deluxe",
			Description: "Juicy beef patty with premium toppings, fresh lettuce, and our signature sauce",
			Price:       price("14.99"),
			Image:       photo("1568901346375-23c9450c58cd"),
			Rating:      4.8,
			CookTime:    "15-20 min",
			Category:    "Burgers",
			IsPopular:   true,
		},
		{
			ID:           "2",
			Name:         "Mediterranean Bowl",
			Description:  "Fresh quinoa bowl with grilled chicken, olives, feta cheese, and tahini dressing",
			Price:        price("12.99"),
			Image:        photo("1546069901-ba9599a7e63c"),
			Rating:       4.9,
			CookTime:     "10-15 min",
			Category:     "Healthy",
			IsVegetarian: true,
		},
		{
			ID:          "3",
			Name:        "Spicy Chicken Wings",
			Description: "Crispy wings tossed in our house buffalo sauce, served with ranch dip",
			Price:       price("11.99"),
			Image:       photo("1567620905732-2d1ec7ab7445"),
			Rating:      4.7,
			CookTime:    "20-25 min",
			Category:    "Burgers",
			IsSpicy:     true,
		},
		{
			ID:           "4",
			Name:         "Margherita Pizza",
			Description:  "Classic Italian pizza with fresh mozzarella, basil, and tomato sauce",
			Price:        price("16.99"),
			Image:        photo("1565299624946-b28f40a0ca4b"),
			Rating:       4.6,
			CookTime:     "25-30 min",
			Category:     "Pizza",
			IsVegetarian: true,
		},
		{
			ID:          "5",
			Name:        "Chicken Teriyaki Bowl",
			Description: "Grilled chicken with steamed rice, vegetables, and teriyaki glaze",
			Price:       price("13.99"),
			Image:       photo("1512058564366-18510be2db19"),
			Rating:      4.5,
			CookTime:    "15-20 min",
			Category:    "Asian",
		},
		{
			ID:          "6",
			Name:        "Chocolate Lava Cake",
			Description: "Warm chocolate cake with molten center, served with vanilla ice cream",
			Price:       price("8.99"),
			Image:       photo("1606313564200-e75d5e30476c"),
			Rating:      4.9,
			CookTime:    "10-15 min",
			Category:    "Desserts",
		},
		{
			ID:           "7",
			Name:         "Caesar Salad",
			Description:  "Crisp romaine lettuce with parmesan cheese, croutons, and caesar dressing",
			Price:        price("10.99"),
			Image:        photo("1551248429-40975aa4de74"),
			Rating:       4.4,
			CookTime:     "5-10 min",
			Category:     "Healthy",
			IsVegetarian: true,
		},
		{
			ID:          "8",
			Name:        "Craft Lemonade",
			Description: "Freshly squeezed lemonade with a hint of mint and sparkling water",
			Price:       price("4.99"),
			Image:       photo("1621263764928-df1444c5e859"),
			Rating:      4.3,
			CookTime:    "2-5 min",
			Category:    "Drinks",
		},
	}
}

func photo(id string) string { return fmt.Sprintf(img, id) }
