package store

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookmarket/models"
	"bookmarket/storage"
)

func newEmptyStore(kv *storage.MemoryKV) *Store {
	kv.Set(storage.KeyPages, "[]")
	kv.Set(storage.KeyLinks, "[]")
	return New(kv, Config{DefaultLink: "http://example.com", AdminPassword: "secret123"})
}

func createTestPage(s *Store, title string) string {
	return s.CreatePage(PageDraft{Title: title, Content: "content"})
}

func TestCreatePage_UniqueIDs(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := createTestPage(s, "Page")
		assert.False(t, seen[id], "duplicate page id %s", id)
		seen[id] = true
	}
}

func TestCreatePage_NeverFails(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())

	id := s.CreatePage(PageDraft{})
	page, ok := s.FindPageByID(id)

	assert.True(t, ok)
	assert.Equal(t, "Untitled Page", page.Title)
	assert.NotNil(t, page.MenuItems)
	assert.NotNil(t, page.SliderImages)
	assert.NotNil(t, page.GridItems)
	assert.NotEmpty(t, page.CreatedAt)
}

func TestCreateLink_RejectsUnknownPage(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())

	_, err := s.CreateLink("nope")
	assert.Error(t, err)
	assert.Empty(t, s.Links())
}

func TestCreateLink_Format(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")

	fullLink, err := s.CreateLink(pageID)
	assert.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^http://example\.com/[A-Za-z0-9]{8}$`), fullLink)
}

func TestCreateLink_FallbackBase(t *testing.T) {
	kv := storage.NewMemoryKV()
	kv.Set(storage.KeyPages, "[]")
	kv.Set(storage.KeyLinks, "[]")

	for _, base := range []string{"", "   ", "not a url", "/relative"} {
		s := New(kv, Config{DefaultLink: base})
		pageID := createTestPage(s, "Test")

		fullLink, err := s.CreateLink(pageID)
		assert.NoError(t, err)
		assert.Regexp(t, `^http://example\.com/[A-Za-z0-9]{8}$`, fullLink)
	}
}

func TestDeletePage_WrongPassword(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")
	s.CreateLink(pageID)

	ok := s.DeletePage(pageID, "wrong")

	assert.False(t, ok)
	assert.Len(t, s.Pages(), 1)
	assert.Len(t, s.Links(), 1)
}

func TestDeletePage_Cascades(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")
	otherID := createTestPage(s, "Other")
	s.CreateLink(pageID)
	s.CreateLink(pageID)
	s.CreateLink(otherID)

	ok := s.DeletePage(pageID, "secret123")

	assert.True(t, ok)
	assert.Empty(t, s.GetPageLinks(pageID))
	assert.Len(t, s.Links(), 1)
	_, found := s.FindPageByID(pageID)
	assert.False(t, found)
}

func TestDeletePage_NoPasswordAllowed(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")

	assert.True(t, s.DeletePage(pageID, ""))
	assert.Empty(t, s.Pages())
}

func TestDeletePage_NotFound(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())

	assert.False(t, s.DeletePage("missing", "secret123"))
}

func TestDeleteLink(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")
	s.CreateLink(pageID)

	link := s.Links()[0]
	s.DeleteLink(link.ID)

	assert.Empty(t, s.Links())

	// Unknown ids are a no-op.
	s.DeleteLink("missing")
	assert.Empty(t, s.Links())
}

func TestRecordVisit(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")
	s.CreateLink(pageID)

	before := s.Links()[0]
	s.RecordVisit(before.ID)

	after := s.Links()[0]
	assert.Equal(t, before.Visits+1, after.Visits)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.FullLink, after.FullLink)
	assert.Equal(t, before.PageID, after.PageID)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	s.RecordVisit("missing")
	assert.Equal(t, after, s.Links()[0])
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	createTestPage(s, "Test")

	assert.Empty(t, s.Search(""))
}

func TestSearch_CaseInsensitivePagesFirst(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Fantasy Books")
	createTestPage(s, "Cooking")
	s.CreateLink(pageID)

	results := s.Search("fAnTaSy")
	assert.Len(t, results, 1)
	assert.Equal(t, models.ResultPage, results[0].Kind)
	assert.Equal(t, "Fantasy Books", results[0].Page.Title)

	// link ids carry the "link_" prefix, page ids the "page_" prefix
	results = s.Search("link_")
	assert.Len(t, results, 1)
	assert.Equal(t, models.ResultLink, results[0].Kind)

	// a query matching both returns pages before links
	results = s.Search("_")
	assert.Len(t, results, 3)
	assert.Equal(t, models.ResultPage, results[0].Kind)
	assert.Equal(t, models.ResultPage, results[1].Kind)
	assert.Equal(t, models.ResultLink, results[2].Kind)
}

func TestRoundTrip(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := newEmptyStore(kv)
	pageID := s.CreatePage(PageDraft{
		Title:        "Round Trip",
		Content:      "# heading",
		MenuItems:    []models.MenuItem{{Title: "Home", Link: "/"}},
		SliderImages: []string{"http://img/1", "http://img/2"},
		CenterImage:  "http://img/c",
		GridItems:    []models.GridItem{{ID: "g1", Title: "Tile", Image: "http://img/g"}},
	})
	s.CreateLink(pageID)
	s.RecordVisit(s.Links()[0].ID)

	reloaded := New(kv, Config{DefaultLink: "http://example.com", AdminPassword: "secret123"})

	assert.Equal(t, s.Pages(), reloaded.Pages())
	assert.Equal(t, s.Links(), reloaded.Links())
}

func TestLoad_SeedFallback(t *testing.T) {
	// Absent blobs fall back to seed data.
	s := New(storage.NewMemoryKV(), Config{})
	assert.Len(t, s.Pages(), 1)
	assert.Equal(t, "page1", s.Pages()[0].ID)
	assert.Len(t, s.Links(), 1)
	assert.Equal(t, 5, s.Links()[0].Visits)

	// Each collection falls back independently on parse failure.
	kv := storage.NewMemoryKV()
	kv.Set(storage.KeyPages, "{not json")
	links, _ := json.Marshal([]models.Link{{ID: "kept", PageID: "page1", FullLink: "http://example.com/keepme12"}})
	kv.Set(storage.KeyLinks, string(links))

	s = New(kv, Config{})
	assert.Equal(t, "page1", s.Pages()[0].ID)
	assert.Equal(t, "kept", s.Links()[0].ID)
}

func TestPersistFailure_KeepsMemoryState(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := newEmptyStore(kv)

	kv.FailWrites = true
	id := createTestPage(s, "Unsaved")

	_, found := s.FindPageByID(id)
	assert.True(t, found)

	raw, _ := kv.Get(storage.KeyPages)
	assert.Equal(t, "[]", raw)
}

func TestSubscribe(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())

	notified := 0
	s.Subscribe(func() { notified++ })

	pageID := createTestPage(s, "Test")
	s.CreateLink(pageID)
	s.DeletePage(pageID, "")

	assert.Equal(t, 3, notified)
}

func TestSubscribe_CallbackMayReadStore(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())

	// Subscribers run after the mutation's lock is released, so reading the
	// store from inside a callback must not deadlock.
	var pageCount, linkCount int
	s.Subscribe(func() {
		pageCount = len(s.Pages())
		linkCount = len(s.Links())
	})

	pageID := createTestPage(s, "Test")
	assert.Equal(t, 1, pageCount)

	s.CreateLink(pageID)
	assert.Equal(t, 1, linkCount)

	s.DeletePage(pageID, "")
	assert.Equal(t, 0, pageCount)
	assert.Equal(t, 0, linkCount)
}

func TestSetDefaultLink(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := newEmptyStore(kv)

	assert.Error(t, s.SetDefaultLink("not-a-url"))
	assert.Equal(t, "http://example.com", s.DefaultLink())

	assert.NoError(t, s.SetDefaultLink("https://links.bookmarket.io"))
	assert.Equal(t, "https://links.bookmarket.io", s.DefaultLink())

	saved, ok := kv.Get(storage.KeyDefaultLink)
	assert.True(t, ok)
	assert.Equal(t, "https://links.bookmarket.io", saved)

	// The persisted value wins over the configured default on reload.
	reloaded := New(kv, Config{DefaultLink: "http://example.com"})
	assert.Equal(t, "https://links.bookmarket.io", reloaded.DefaultLink())
}

func TestScenario_TwoLinksForOnePage(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")

	first, err := s.CreateLink(pageID)
	assert.NoError(t, err)
	second, err := s.CreateLink(pageID)
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)

	links := s.GetPageLinks(pageID)
	assert.Len(t, links, 2)
	for _, link := range links {
		assert.Equal(t, pageID, link.PageID)
	}
	assert.NotEqual(t, links[0].ID, links[1].ID)
}

func TestFindLinkByCode(t *testing.T) {
	s := newEmptyStore(storage.NewMemoryKV())
	pageID := createTestPage(s, "Test")
	fullLink, _ := s.CreateLink(pageID)

	code := fullLink[len(fullLink)-8:]
	link, ok := s.FindLinkByCode(code)
	assert.True(t, ok)
	assert.Equal(t, fullLink, link.FullLink)

	_, ok = s.FindLinkByCode("zzzzzzzz")
	assert.False(t, ok)
}
