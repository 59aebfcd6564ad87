package store

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"bookmarket/models"
)

// MaxGridItems caps the product tiles on a single page.
const MaxGridItems = 16

// PageDraft is a page as submitted from the dashboard form, lacking the
// store-assigned id and timestamp.
type PageDraft struct {
	Title           string
	Content         string
	MenuItems       []models.MenuItem
	SliderImages    []string
	CenterImage     string
	GridItems       []models.GridItem
	IsFileBasedPage bool
	FilePath        string
}

// SanitizeDraft normalizes a draft into a valid page, substituting defaults
// for missing fields instead of rejecting. The second return value names each
// field a default was applied to, so callers and tests can see exactly what
// was fixed up.
func SanitizeDraft(draft PageDraft) (PageDraft, []string) {
	var defaults []string

	if draft.Title == "" {
		draft.Title = "Untitled Page"
		defaults = append(defaults, "title")
	}

	if draft.MenuItems == nil {
		draft.MenuItems = []models.MenuItem{}
		defaults = append(defaults, "menuItems")
	}

	if draft.SliderImages == nil {
		draft.SliderImages = []string{}
		defaults = append(defaults, "sliderImages")
	}

	if draft.GridItems == nil {
		draft.GridItems = []models.GridItem{}
		defaults = append(defaults, "gridItems")
	}

	if len(draft.GridItems) > MaxGridItems {
		draft.GridItems = draft.GridItems[:MaxGridItems]
		defaults = append(defaults, "gridItems(truncated)")
	}

	seen := make(map[string]bool, len(draft.GridItems))
	for i := range draft.GridItems {
		item := &draft.GridItems[i]
		if item.ID == "" || seen[item.ID] {
			item.ID = "item-" + randomString(6)
			defaults = append(defaults, fmt.Sprintf("gridItems[%d].id", i))
		}
		seen[item.ID] = true
		if item.Title == "" {
			item.Title = "Untitled Item"
			defaults = append(defaults, fmt.Sprintf("gridItems[%d].title", i))
		}
	}

	return draft, defaults
}

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			b[i] = charset[0]
			continue
		}
		b[i] = charset[num.Int64()]
	}
	return string(b)
}
