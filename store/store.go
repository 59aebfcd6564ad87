// Package store is the single source of truth for pages and generated links.
// The canonical collections live in memory and are mirrored to the key-value
// storage after every mutation. A failed write is logged and swallowed; the
// in-memory state is never rolled back.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"bookmarket/models"
	"bookmarket/storage"
)

// FallbackBaseLink is used when the configured default link is empty or not a
// usable absolute URL, so generated links are always well-formed.
const FallbackBaseLink = "http://example.com"

type Config struct {
	DefaultLink   string
	AdminPassword string
}

type Store struct {
	mu          sync.Mutex
	kv          storage.KV
	pages       []models.Page
	links       []models.Link
	defaultLink string
	adminSecret string
	subscribers []func()
}

func New(kv storage.KV, cfg Config) *Store {
	s := &Store{
		kv:          kv,
		defaultLink: cfg.DefaultLink,
		adminSecret: cfg.AdminPassword,
	}
	s.load()
	return s
}

// load restores both collections from storage. Each falls back to the seed
// dataset independently when its blob is absent or unparseable.
func (s *Store) load() {
	if raw, ok := s.kv.Get(storage.KeyPages); ok {
		var pages []models.Page
		if err := json.Unmarshal([]byte(raw), &pages); err != nil {
			log.Printf("Error parsing stored pages, falling back to seed data: %v", err)
			s.pages = seedPages()
		} else {
			s.pages = pages
		}
	} else {
		s.pages = seedPages()
	}

	if raw, ok := s.kv.Get(storage.KeyLinks); ok {
		var links []models.Link
		if err := json.Unmarshal([]byte(raw), &links); err != nil {
			log.Printf("Error parsing stored links, falling back to seed data: %v", err)
			s.links = seedLinks()
		} else {
			s.links = links
		}
	} else {
		s.links = seedLinks()
	}

	if raw, ok := s.kv.Get(storage.KeyDefaultLink); ok && raw != "" {
		s.defaultLink = raw
	}
}

// persist rewrites both collection blobs in full. Write failures do not
// propagate; memory and storage are allowed to diverge.
func (s *Store) persist() {
	if data, err := json.Marshal(s.pages); err != nil {
		log.Printf("Error serializing pages: %v", err)
	} else if err := s.kv.Set(storage.KeyPages, string(data)); err != nil {
		log.Printf("Error saving pages to storage: %v", err)
	}

	if data, err := json.Marshal(s.links); err != nil {
		log.Printf("Error serializing links: %v", err)
	} else if err := s.kv.Set(storage.KeyLinks, string(data)); err != nil {
		log.Printf("Error saving links to storage: %v", err)
	}
}

// Subscribe registers a callback fired after every successful mutation.
// Callbacks run synchronously on the mutating goroutine, after the store lock
// is released, so they may call back into the store.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	subscribers := make([]func(), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}

// CreatePage sanitizes the draft, assigns a fresh id and timestamp, appends
// the page and returns its id. Malformed drafts degrade to a minimal valid
// record; this operation never fails.
func (s *Store) CreatePage(draft PageDraft) string {
	sanitized, defaults := SanitizeDraft(draft)
	if len(defaults) > 0 {
		log.Printf("CreatePage: applied defaults for %s", strings.Join(defaults, ", "))
	}

	page := models.Page{
		ID:              fmt.Sprintf("page_%d_%s", time.Now().UnixMilli(), randomString(6)),
		Title:           sanitized.Title,
		Content:         sanitized.Content,
		MenuItems:       sanitized.MenuItems,
		SliderImages:    sanitized.SliderImages,
		CenterImage:     sanitized.CenterImage,
		GridItems:       sanitized.GridItems,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		IsFileBasedPage: sanitized.IsFileBasedPage,
		FilePath:        sanitized.FilePath,
	}

	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.persist()
	s.mu.Unlock()

	s.notify()
	return page.ID
}

// CreateLink generates a short link for an existing page and returns the full
// URL. It rejects when the page does not exist.
func (s *Store) CreateLink(pageID string) (string, error) {
	s.mu.Lock()

	found := false
	for _, page := range s.pages {
		if page.ID == pageID {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return "", fmt.Errorf("page %q not found", pageID)
	}

	fullLink := s.baseLink() + "/" + randomString(8)

	link := models.Link{
		ID:        fmt.Sprintf("link_%d_%s", time.Now().UnixMilli(), randomString(6)),
		FullLink:  fullLink,
		PageID:    pageID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Visits:    0,
	}

	s.links = append(s.links, link)
	s.persist()
	s.mu.Unlock()

	s.notify()
	return fullLink, nil
}

// baseLink returns the configured default link, falling back when it is blank
// or not an absolute URL. Callers must hold the mutex.
func (s *Store) baseLink() string {
	base := strings.TrimSpace(s.defaultLink)
	if base == "" {
		return FallbackBaseLink
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return FallbackBaseLink
	}
	return strings.TrimRight(base, "/")
}

func (s *Store) FindPageByID(id string) (models.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, page := range s.pages {
		if page.ID == id {
			return page, true
		}
	}
	return models.Page{}, false
}

func (s *Store) FindLinkByID(id string) (models.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, link := range s.links {
		if link.ID == id {
			return link, true
		}
	}
	return models.Link{}, false
}

// FindLinkByCode matches the random suffix of a generated link, for resolving
// public visits.
func (s *Store) FindLinkByCode(code string) (models.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, link := range s.links {
		if strings.HasSuffix(link.FullLink, "/"+code) {
			return link, true
		}
	}
	return models.Link{}, false
}

// DeletePage removes a page and cascades to every link referencing it. A
// supplied password must match the admin secret or the operation is refused
// without mutating state. Returns whether a page was removed.
func (s *Store) DeletePage(id, password string) bool {
	s.mu.Lock()

	if password != "" && password != s.adminSecret {
		s.mu.Unlock()
		return false
	}

	index := -1
	for i, page := range s.pages {
		if page.ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		s.mu.Unlock()
		return false
	}

	s.pages = append(s.pages[:index], s.pages[index+1:]...)

	remaining := s.links[:0]
	for _, link := range s.links {
		if link.PageID != id {
			remaining = append(remaining, link)
		}
	}
	s.links = remaining

	s.persist()
	s.mu.Unlock()

	s.notify()
	return true
}

// DeleteLink removes the matching link unconditionally.
func (s *Store) DeleteLink(id string) {
	s.mu.Lock()

	remaining := s.links[:0]
	for _, link := range s.links {
		if link.ID != id {
			remaining = append(remaining, link)
		}
	}
	s.links = remaining

	s.persist()
	s.mu.Unlock()

	s.notify()
}

// GetPageLinks returns all links referencing the page, in storage order.
func (s *Store) GetPageLinks(pageID string) []models.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Link
	for _, link := range s.links {
		if link.PageID == pageID {
			result = append(result, link)
		}
	}
	return result
}

// RecordVisit increments the link's visit counter by exactly one. Unknown
// links are a silent no-op.
func (s *Store) RecordVisit(linkID string) {
	s.mu.Lock()

	for i := range s.links {
		if s.links[i].ID == linkID {
			s.links[i].Visits++
			s.persist()
			s.mu.Unlock()
			s.notify()
			return
		}
	}

	s.mu.Unlock()
}

// Search matches the query case-insensitively against page id/title and link
// id/fullLink. Matching pages come before matching links. An empty query
// returns no results.
func (s *Store) Search(query string) []models.SearchResult {
	if query == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var results []models.SearchResult

	for i := range s.pages {
		page := s.pages[i]
		if strings.Contains(strings.ToLower(page.ID), q) ||
			strings.Contains(strings.ToLower(page.Title), q) {
			results = append(results, models.SearchResult{Kind: models.ResultPage, Page: &page})
		}
	}

	for i := range s.links {
		link := s.links[i]
		if strings.Contains(strings.ToLower(link.ID), q) ||
			strings.Contains(strings.ToLower(link.FullLink), q) {
			results = append(results, models.SearchResult{Kind: models.ResultLink, Link: &link})
		}
	}

	return results
}

// Pages returns a copy of the page collection in storage order.
func (s *Store) Pages() []models.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages := make([]models.Page, len(s.pages))
	copy(pages, s.pages)
	return pages
}

// Links returns a copy of the link collection in storage order.
func (s *Store) Links() []models.Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := make([]models.Link, len(s.links))
	copy(links, s.links)
	return links
}

// ExportRecords decides what gets exported. Actual file generation is the
// export package's job.
func (s *Store) ExportRecords() ([]models.Page, []models.Link) {
	return s.Pages(), s.Links()
}

// DefaultLink returns the base URL used for newly generated links.
func (s *Store) DefaultLink() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultLink
}

// SetDefaultLink validates and persists the base URL for generated links.
func (s *Store) SetDefaultLink(link string) error {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL %q: must include http:// or https://", link)
	}

	s.mu.Lock()
	s.defaultLink = link
	if err := s.kv.Set(storage.KeyDefaultLink, link); err != nil {
		log.Printf("Error saving default link to storage: %v", err)
	}
	s.mu.Unlock()

	s.notify()
	return nil
}
