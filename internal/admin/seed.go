package admin

import (
	"github.com/abgdnv/storefront/internal/product"
	"github.com/shopspring/decimal"
)

// SampleProducts returns the demo catalog used to seed an empty store.
func SampleProducts() []product.Product {
	return []product.Product{
		{
			Name:        "Wireless Headphones",
			Description: "High-quality wireless headphones with noise cancellation technology. Perfect for music lovers and professionals who need to focus.",
			Price:       decimal.RequireFromString("129.99"),
			Category:    "electronics",
			ImageURL:    "https://res.cloudinary.com/conectart/image/upload/v1742401531/tiqmrolf8jwyciiimfqu.jpg",
			Featured:    true,
		},
		{
			Name:        "Smart Watch",
			Description: "Track your fitness goals, receive notifications, and more with this advanced smartwatch. Water-resistant and long battery life.",
			Price:       decimal.RequireFromString("199.99"),
			Category:    "electronics",
			ImageURL:    "https://res.cloudinary.com/conectart/image/upload/v1742402690/x6rix2uxg7ok1nwcrjke.jpg",
			Featured:    true,
		},
		{
			Name:        "Cotton T-Shirt",
			Description: "Comfortable 100% cotton t-shirt available in multiple colors. Perfect for casual wear or layering.",
			Price:       decimal.RequireFromString("24.99"),
			Category:    "clothing",
			ImageURL:    "https://source.unsplash.com/random/800x600/?tshirt",
		},
		{
			Name:        "Denim Jeans",
			Description: "Classic denim jeans with a modern fit. Durable and stylish for everyday wear.",
			Price:       decimal.RequireFromString("49.99"),
			Category:    "clothing",
			ImageURL:    "https://source.unsplash.com/random/800x600/?jeans",
		},
		{
			Name:        "Coffee Maker",
			Description: "Programmable coffee maker with a built-in grinder. Make the perfect cup of coffee every morning.",
			Price:       decimal.RequireFromString("89.99"),
			Category:    "home",
			ImageURL:    "https://res.cloudinary.com/conectart/image/upload/v1742402555/wth5ekimloaqxpjdopk4.jpg",
			Featured:    true,
		},
		{
			Name:        "Yoga Mat",
			Description: "Non-slip yoga mat made from eco-friendly materials. Perfect for yoga, pilates, or any floor exercise.",
			Price:       decimal.RequireFromString("29.99"),
			Category:    "sports",
			ImageURL:    "https://source.unsplash.com/random/800x600/?yogamat",
		},
		{
			Name:        "Bestselling Novel",
			Description: "The latest bestselling fiction novel that everyone is talking about. A thrilling story of adventure and mystery.",
			Price:       decimal.RequireFromString("19.99"),
			Category:    "books",
			ImageURL:    "https://source.unsplash.com/random/800x600/?book",
			Featured:    true,
		},
		{
			Name:        "Facial Cleanser",
			Description: "Gentle facial cleanser suitable for all skin types. Removes makeup and impurities without drying the skin.",
			Price:       decimal.RequireFromString("14.99"),
			Category:    "beauty",
			ImageURL:    "https://source.unsplash.com/random/800x600/?skincare",
		},
	}
}
