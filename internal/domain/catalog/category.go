package catalog

import "fmt"

// Category is the tag half of a service reference. Carts, orders and
// wishlists name catalog entities as (category, id) pairs instead of
// embedding the concrete entity type.
type Category string

const (
	CategoryVenue         Category = "venue"
	CategoryPlanningDecor Category = "planning_decor"
	CategoryPhotography   Category = "photography"
	CategoryMakeup        Category = "makeup"
	CategoryBridalWear    Category = "bridal_wear"
	CategoryGroomWear     Category = "groom_wear"
	CategoryMehandi       Category = "mehandi"
	CategoryWeddingCake   Category = "wedding_cake"
	CategoryCarRental     Category = "car_rental"
	CategoryDJ            Category = "dj"
	CategoryJewelryRental Category = "jewelry_rental"
	CategoryCatering      Category = "catering"
)

// InvalidCategoryError indicates a reference carried an unknown category tag.
type InvalidCategoryError struct {
	Category string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("unknown service category %q", e.Category)
}

// Schema describes how one category's entities are stored and priced. The
// price kind is declared here once, at registry build time, so price
// resolution is an explicit dispatch rather than per-request field probing.
type Schema struct {
	Category    Category
	DisplayName string
	Table       string
	PriceKind   PriceKind
}

// registry holds the schema for every known category. Adding a category means
// adding an entry here; every lookup is driven off this table.
var registry = map[Category]Schema{
	CategoryVenue:         {CategoryVenue, "Venue", "venues", PriceFixed},
	CategoryPlanningDecor: {CategoryPlanningDecor, "Planning & Decor", "planning_decor", PriceFixed},
	CategoryPhotography:   {CategoryPhotography, "Photography", "photography", PriceFixed},
	CategoryMakeup:        {CategoryMakeup, "Makeup", "makeup", PriceFixed},
	CategoryBridalWear:    {CategoryBridalWear, "Bridal Wear", "bridal_wear", PriceRange},
	CategoryGroomWear:     {CategoryGroomWear, "Groom Wear", "groom_wear", PriceRange},
	CategoryMehandi:       {CategoryMehandi, "Mehandi", "mehandi", PriceFixed},
	CategoryWeddingCake:   {CategoryWeddingCake, "Wedding Cake", "wedding_cakes", PriceFixed},
	CategoryCarRental:     {CategoryCarRental, "Car Rental", "car_rentals", PriceFixed},
	CategoryDJ:            {CategoryDJ, "DJ", "djs", PriceFixed},
	CategoryJewelryRental: {CategoryJewelryRental, "Jewelry Rental", "jewelry_rentals", PriceFixed},
	CategoryCatering:      {CategoryCatering, "Catering", "catering", PricePerUnit},
}

// Categories returns all known categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryVenue, CategoryPlanningDecor, CategoryPhotography,
		CategoryMakeup, CategoryBridalWear, CategoryGroomWear,
		CategoryMehandi, CategoryWeddingCake, CategoryCarRental,
		CategoryDJ, CategoryJewelryRental, CategoryCatering,
	}
}

// SchemaFor returns the schema for the given category tag, or an
// InvalidCategoryError for unknown tags.
func SchemaFor(c Category) (Schema, error) {
	s, ok := registry[c]
	if !ok {
		return Schema{}, &InvalidCategoryError{Category: string(c)}
	}
	return s, nil
}

// ParseCategory validates a raw tag coming off the wire.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if _, ok := registry[c]; !ok {
		return "", &InvalidCategoryError{Category: raw}
	}
	return c, nil
}
