package store

import (
	"time"

	"bookmarket/models"
)

// seedPages is the built-in dataset used when no stored pages exist or the
// stored blob cannot be parsed.
func seedPages() []models.Page {
	return []models.Page{
		{
			ID:      "page1",
			Title:   "Fantasy Books Collection",
			Content: "Explore our fantastic collection of fantasy books for all ages.",
			MenuItems: []models.MenuItem{
				{Title: "Home", Link: "#"},
				{Title: "Books", Link: "#"},
				{Title: "About", Link: "#"},
				{Title: "Contact", Link: "#"},
			},
			SliderImages: []string{
				"https://source.unsplash.com/random/1200x400/?fantasy,books",
				"https://source.unsplash.com/random/1200x400/?library",
			},
			CenterImage: "https://source.unsplash.com/random/600x400/?books",
			GridItems: []models.GridItem{
				{ID: "g1", Title: "The Lord of the Rings", Image: "https://source.unsplash.com/random/300x300/?fantasy"},
				{ID: "g2", Title: "Harry Potter", Image: "https://source.unsplash.com/random/300x300/?magic"},
				{ID: "g3", Title: "The Witcher", Image: "https://source.unsplash.com/random/300x300/?medieval"},
				{ID: "g4", Title: "Game of Thrones", Image: "https://source.unsplash.com/random/300x300/?dragon"},
				{ID: "g5", Title: "Percy Jackson", Image: "https://source.unsplash.com/random/300x300/?mythology"},
				{ID: "g6", Title: "Narnia", Image: "https://source.unsplash.com/random/300x300/?winter"},
				{ID: "g7", Title: "Eragon", Image: "https://source.unsplash.com/random/300x300/?dragon"},
				{ID: "g8", Title: "The Hobbit", Image: "https://source.unsplash.com/random/300x300/?adventure"},
				{ID: "g9", Title: "Wheel of Time", Image: "https://source.unsplash.com/random/300x300/?epic"},
				{ID: "g10", Title: "Dune", Image: "https://source.unsplash.com/random/300x300/?desert"},
				{ID: "g11", Title: "Mistborn", Image: "https://source.unsplash.com/random/300x300/?fog"},
				{ID: "g12", Title: "The Name of the Wind", Image: "https://source.unsplash.com/random/300x300/?wind"},
				{ID: "g13", Title: "A Wizard of Earthsea", Image: "https://source.unsplash.com/random/300x300/?ocean"},
				{ID: "g14", Title: "American Gods", Image: "https://source.unsplash.com/random/300x300/?gods"},
				{ID: "g15", Title: "Conan the Barbarian", Image: "https://source.unsplash.com/random/300x300/?warrior"},
				{ID: "g16", Title: "The Dark Tower", Image: "https://source.unsplash.com/random/300x300/?tower"},
			},
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func seedLinks() []models.Link {
	return []models.Link{
		{
			ID:        "link1",
			FullLink:  "http://example.com/abc123",
			PageID:    "page1",
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Visits:    5,
		},
	}
}
