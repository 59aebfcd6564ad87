package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LinkEvent is one recorded visit to a generated link. The store's visit
// counter stays the canonical count; events exist for the reporting charts.
type LinkEvent struct {
	ID        uint      `gorm:"primary_key;autoIncrement"`
	LinkID    string    `gorm:"not null;index"`
	PageID    string    `gorm:"index"`
	CookieID  string    `gorm:"not null;index"`
	Event     string    `gorm:"not null;default:'visit'"`
	IP        string    `gorm:"not null"`
	Language  *string
	Browser   *string
	CreatedAt time.Time `gorm:"index"`
}

// AnalyticsModule records and aggregates link visit events.
type AnalyticsModule struct {
	db *gorm.DB
}

func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		log.Println("Analytics DB is nil, analytics will be disabled")
		return nil
	}

	if err := db.AutoMigrate(&LinkEvent{}); err != nil {
		log.Printf("Error migrating link_events table: %v", err)
		return nil
	}

	return &AnalyticsModule{db: db}
}

// TrackVisit records a visit to a link. A visitor is only counted once per
// link per 30 minutes so refreshes do not inflate the charts.
func (a *AnalyticsModule) TrackVisit(c *gin.Context, linkID, pageID string) {
	if a == nil || a.db == nil {
		return
	}

	cookieID := a.getOrCreateCookieID(c)

	thirtyMinutesAgo := time.Now().Add(-30 * time.Minute)
	var recentVisit LinkEvent
	err := a.db.Where("cookie_id = ? AND link_id = ? AND created_at > ?",
		cookieID, linkID, thirtyMinutesAgo).First(&recentVisit).Error
	if err == nil {
		return
	}

	browser := a.extractBrowser(c.Request.UserAgent())
	language := a.extractLanguage(c)

	event := LinkEvent{
		LinkID:    linkID,
		PageID:    pageID,
		CookieID:  cookieID,
		Event:     "visit",
		IP:        a.getClientIP(c),
		Language:  language,
		Browser:   browser,
		CreatedAt: time.Now(),
	}

	// Saved asynchronously so the redirect path never waits on the insert.
	go func() {
		if err := a.db.Create(&event).Error; err != nil {
			log.Printf("Error saving analytics event: %v", err)
		}
	}()
}

// getOrCreateCookieID identifies a unique visitor across requests.
func (a *AnalyticsModule) getOrCreateCookieID(c *gin.Context) string {
	cookieName := "bookmarket_visitor_id"

	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	data := time.Now().String() + c.ClientIP() + c.Request.UserAgent()
	hash := sha256.Sum256([]byte(data))
	cookieID := hex.EncodeToString(hash[:])

	c.SetCookie(
		cookieName,
		cookieID,
		60*60*24*365*2, // 2 years
		"/",
		"",
		false,
		true,
	)

	return cookieID
}

// getClientIP resolves the real client IP behind common proxy headers.
func (a *AnalyticsModule) getClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}

	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}

	return c.ClientIP()
}

func (a *AnalyticsModule) extractBrowser(userAgent string) *string {
	if userAgent == "" {
		return nil
	}

	ua := strings.ToLower(userAgent)
	var browser string

	// Order matters, the more specific browsers first.
	switch {
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		browser = "Chrome"
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		browser = "Safari"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		browser = "Internet Explorer"
	default:
		browser = "Other"
	}

	return &browser
}

func (a *AnalyticsModule) extractLanguage(c *gin.Context) *string {
	acceptLang := c.GetHeader("Accept-Language")
	if acceptLang == "" {
		return nil
	}

	// "en-US,en;q=0.9,pt-BR;q=0.8" -> most preferred language only
	parts := strings.Split(acceptLang, ",")
	if len(parts) > 0 {
		lang := strings.TrimSpace(parts[0])
		lang = strings.Split(lang, ";")[0]
		return &lang
	}

	return nil
}

// DayVisits is the visit count of one calendar day.
type DayVisits struct {
	Date  string
	Count int64
}

// LinkVisits is the event count of one link.
type LinkVisits struct {
	LinkID   string
	FullLink string
	Count    int64
}

// GetLinkVisitCount returns the total recorded events for a link.
func (a *AnalyticsModule) GetLinkVisitCount(linkID string) int64 {
	if a == nil || a.db == nil {
		return 0
	}

	var count int64
	a.db.Model(&LinkEvent{}).Where("link_id = ?", linkID).Count(&count)
	return count
}

// GetVisitsByDay returns one entry per day for the last N days, zero-filled
// for days without visits.
func (a *AnalyticsModule) GetVisitsByDay(days int) []DayVisits {
	if a == nil || a.db == nil {
		return []DayVisits{}
	}

	startDate := time.Now().AddDate(0, 0, -days)

	var results []struct {
		Date  string
		Count int64
	}

	a.db.Model(&LinkEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results)

	dayVisits := make([]DayVisits, days)
	for i := 0; i < days; i++ {
		date := time.Now().AddDate(0, 0, -(days - 1 - i))
		dayVisits[i] = DayVisits{
			Date:  date.Format("2006-01-02"),
			Count: 0,
		}
	}

	for _, result := range results {
		for i := range dayVisits {
			if dayVisits[i].Date == result.Date {
				dayVisits[i].Count = result.Count
				break
			}
		}
	}

	return dayVisits
}

// GetTopLinks returns the most visited links of the last X days.
func (a *AnalyticsModule) GetTopLinks(days int, limit int) []LinkVisits {
	if a == nil || a.db == nil {
		return []LinkVisits{}
	}

	startDate := time.Now().AddDate(0, 0, -days)

	var results []LinkVisits
	a.db.Model(&LinkEvent{}).
		Select("link_id as link_id, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("link_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results)

	return results
}
