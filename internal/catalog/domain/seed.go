package domain

// Default returns the brand's product range.
func Default() *Catalog {
	return NewCatalog([]Product{
		{
			ID:          "1",
			Name:        "Large Unripe Plantain Chips",
			Description: "Crunchy unripe plantain chips, perfect for a healthy snack. Made from carefully selected plantains, thinly sliced and fried for that satisfying crunch.",
			Price:       4000,
			Weight:      "500g",
			Image:       "/images/products/large-unripe.png",
			Type:        TypeUnripe,
			Size:        SizeLarge,
			InStock:     true,
			Featured:    true,
		},
		{
			ID:          "2",
			Name:        "Medium Ripe Plantain Chips",
			Description: "Sweet and crunchy ripe plantain chips, naturally sweet and carefully fried.",
			Price:       3000,
			Weight:      "250g",
			Image:       "/images/products/medium-ripe.png",
			Type:        TypeRipe,
			Size:        SizeMedium,
			InStock:     true,
			Featured:    false,
		},
		{
			ID:          "3",
			Name:        "Jumbo Ripe Plantain Chips",
			Description: "Our largest pack of sweet ripe plantain chips, made for sharing.",
			Price:       12000,
			Weight:      "1.8kg",
			Image:       "/images/products/jumbo-ripe.png",
			Type:        TypeRipe,
			Size:        SizeJumbo,
			InStock:     true,
			Featured:    true,
		},
		{
			ID:          "4",
			Name:        "Large Ripe Plantain Chips",
			Description: "Sweet ripe plantain chips in our popular large size.",
			Price:       4000,
			Weight:      "500g",
			Image:       "/images/products/large-ripe.png",
			Type:        TypeRipe,
			Size:        SizeLarge,
			InStock:     true,
			Featured:    true,
		},
		{
			ID:          "5",
			Name:        "Small Ripe Plantain Chips",
			Description: "A convenient small pack of ripe plantain chips for on-the-go snacking.",
			Price:       2500,
			Weight:      "180g",
			Image:       "/images/products/small-ripe.png",
			Type:        TypeRipe,
			Size:        SizeSmall,
			InStock:     true,
			Featured:    false,
		},
	})
}
