package admin

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"bookmarket/analytics"
	"bookmarket/auth"
	"bookmarket/cache"
	"bookmarket/export"
	"bookmarket/ingest"
	"bookmarket/models"
	"bookmarket/store"
)

type AdminModule struct {
	store     *store.Store
	auth      *auth.Service
	analytics *analytics.AnalyticsModule
	loader    *ingest.Loader
}

func NewAdminModule(s *store.Store, authService *auth.Service, analyticsModule *analytics.AnalyticsModule, loader *ingest.Loader) *AdminModule {
	return &AdminModule{
		store:     s,
		auth:      authService,
		analytics: analyticsModule,
		loader:    loader,
	}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/admin", a.adminRoot)
	router.GET("/admin/logout", a.logout)

	adminGroup := router.Group("/admin")
	adminGroup.Use(a.requireAuth)
	{
		adminGroup.GET("/dashboard", a.dashboard)
		adminGroup.GET("/pages/new", a.newPage)
		adminGroup.POST("/pages", a.createPage)
		adminGroup.GET("/pages/:id", a.pageDetail)
		adminGroup.DELETE("/pages/:id", a.deletePage)
		adminGroup.GET("/links", a.linkGenerator)
		adminGroup.POST("/links", a.createLink)
		adminGroup.DELETE("/links/:id", a.deleteLink)
		adminGroup.GET("/database", a.databaseBrowser)
		adminGroup.GET("/search", a.search)
		adminGroup.GET("/settings", a.settingsPage)
		adminGroup.POST("/settings", a.updateSettings)
		adminGroup.GET("/visits", a.visitsPage)
		adminGroup.GET("/export/csv", a.exportCSV)
		adminGroup.GET("/export/excel", a.exportExcel)
		adminGroup.GET("/account/password", a.changePasswordPage)
		adminGroup.POST("/account/password", a.changePasswordPost)

		accountAdmin := adminGroup.Group("/account")
		accountAdmin.Use(a.requireAdmin)
		{
			accountAdmin.GET("/users/new", a.createUserPage)
			accountAdmin.POST("/users", a.createUserPost)
			accountAdmin.POST("/admin-password", a.changeAdminPassword)
		}
	}
}

func (a *AdminModule) requireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Next()
}

// requireAdmin loads the session user and refuses non-admin roles.
func (a *AdminModule) requireAdmin(c *gin.Context) {
	userID := c.GetInt("user_id")

	user, err := a.auth.FindByID(userID)
	if err != nil || user.Role != models.RoleAdmin {
		c.HTML(http.StatusForbidden, "admin_error.html", gin.H{
			"error": "Admin access required",
		})
		c.Abort()
		return
	}

	c.Set("user", user)
	c.Next()
}

func (a *AdminModule) adminRoot(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID != nil {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (a *AdminModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID != nil {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}

	c.HTML(http.StatusOK, "admin_login.html", gin.H{})
}

func (a *AdminModule) loginPost(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.auth.Login(username, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"error":    "Invalid username or password",
			"username": username,
		})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/login")
}

func (a *AdminModule) dashboard(c *gin.Context) {
	pages := a.store.Pages()
	links := a.store.Links()

	linkCounts := make(map[string]int, len(pages))
	for _, link := range links {
		linkCounts[link.PageID]++
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", gin.H{
		"pages":      pages,
		"linkCounts": linkCounts,
		"totalLinks": len(links),
	})
}

func (a *AdminModule) newPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_new_page.html", gin.H{
		"pageFiles":    a.loader.PageFiles(),
		"maxGridItems": store.MaxGridItems,
	})
}

// createPage builds a draft out of the submitted form and hands it to the
// store. The store sanitizes whatever arrives; this handler never rejects.
func (a *AdminModule) createPage(c *gin.Context) {
	draft := store.PageDraft{
		Title:       c.PostForm("title"),
		Content:     c.PostForm("content"),
		CenterImage: c.PostForm("center_image"),
	}

	menuTitles := c.PostFormArray("menu_title")
	menuLinks := c.PostFormArray("menu_link")
	for i, title := range menuTitles {
		item := models.MenuItem{Title: title}
		if i < len(menuLinks) {
			item.Link = menuLinks[i]
		}
		draft.MenuItems = append(draft.MenuItems, item)
	}

	for _, line := range strings.Split(c.PostForm("slider_images"), "\n") {
		if url := strings.TrimSpace(line); url != "" {
			draft.SliderImages = append(draft.SliderImages, url)
		}
	}

	gridTitles := c.PostFormArray("grid_title")
	gridImages := c.PostFormArray("grid_image")
	for i, title := range gridTitles {
		item := models.GridItem{Title: title}
		if i < len(gridImages) {
			item.Image = gridImages[i]
		}
		draft.GridItems = append(draft.GridItems, item)
	}

	if filePath := c.PostForm("file_path"); filePath != "" {
		draft.IsFileBasedPage = true
		draft.FilePath = filePath
	}

	id := a.store.CreatePage(draft)

	c.Redirect(http.StatusFound, "/admin/pages/"+id)
}

func (a *AdminModule) pageDetail(c *gin.Context) {
	pageID := c.Param("id")

	page, ok := a.store.FindPageByID(pageID)
	if !ok {
		c.HTML(http.StatusNotFound, "admin_error.html", gin.H{
			"error": "Page not found",
		})
		return
	}

	links := a.store.GetPageLinks(pageID)

	c.HTML(http.StatusOK, "admin_page_detail.html", gin.H{
		"page":  page,
		"links": links,
	})
}

func (a *AdminModule) deletePage(c *gin.Context) {
	pageID := c.Param("id")
	password := c.PostForm("password")

	if _, ok := a.store.FindPageByID(pageID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		return
	}

	if !a.store.DeletePage(pageID, password) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Wrong password"})
		return
	}

	if err := cache.ClearPageCache(pageID); err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Page deleted, cache not cleared: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Page and associated links deleted"})
}

func (a *AdminModule) linkGenerator(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_links.html", gin.H{
		"pages":       a.store.Pages(),
		"links":       a.store.Links(),
		"defaultLink": a.store.DefaultLink(),
	})
}

func (a *AdminModule) createLink(c *gin.Context) {
	pageID := c.PostForm("page_id")

	fullLink, err := a.store.CreateLink(pageID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "The selected page does not exist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fullLink": fullLink})
}

func (a *AdminModule) deleteLink(c *gin.Context) {
	linkID := c.Param("id")

	if _, ok := a.store.FindLinkByID(linkID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	a.store.DeleteLink(linkID)
	c.JSON(http.StatusOK, gin.H{"message": "Link deleted"})
}

func (a *AdminModule) databaseBrowser(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_database.html", gin.H{
		"files": a.loader.Load(),
		"pages": a.store.Pages(),
		"links": a.store.Links(),
	})
}

func (a *AdminModule) search(c *gin.Context) {
	query := c.Query("q")
	results := a.store.Search(query)

	c.HTML(http.StatusOK, "admin_search.html", gin.H{
		"query":   query,
		"results": results,
	})
}

func (a *AdminModule) settingsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_settings.html", gin.H{
		"defaultLink": a.store.DefaultLink(),
	})
}

func (a *AdminModule) updateSettings(c *gin.Context) {
	defaultLink := c.PostForm("default_link")

	if err := a.store.SetDefaultLink(defaultLink); err != nil {
		c.HTML(http.StatusBadRequest, "admin_settings.html", gin.H{
			"error":       "Please enter a valid URL including http:// or https://",
			"defaultLink": a.store.DefaultLink(),
		})
		return
	}

	c.Redirect(http.StatusFound, "/admin/settings")
}

func (a *AdminModule) createUserPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_create_user.html", gin.H{})
}

func (a *AdminModule) createUserPost(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	role := c.PostForm("role")

	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "admin_create_user.html", gin.H{
			"error":    "Username and password are required",
			"username": username,
		})
		return
	}

	if err := a.auth.CreateUser(username, password, role); err != nil {
		c.HTML(http.StatusBadRequest, "admin_create_user.html", gin.H{
			"error":    err.Error(),
			"username": username,
		})
		return
	}

	c.HTML(http.StatusOK, "admin_create_user.html", gin.H{
		"success": "Account created for " + username,
	})
}

func (a *AdminModule) changePasswordPage(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_change_password.html", gin.H{})
}

func (a *AdminModule) changePasswordPost(c *gin.Context) {
	userID := c.GetInt("user_id")
	oldPassword := c.PostForm("old_password")
	newPassword := c.PostForm("new_password")

	if err := a.auth.ChangePassword(userID, oldPassword, newPassword); err != nil {
		c.HTML(http.StatusBadRequest, "admin_change_password.html", gin.H{
			"error": err.Error(),
		})
		return
	}

	c.HTML(http.StatusOK, "admin_change_password.html", gin.H{
		"success": "Password updated",
	})
}

func (a *AdminModule) changeAdminPassword(c *gin.Context) {
	newPassword := c.PostForm("new_password")

	if newPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password is required"})
		return
	}

	if err := a.auth.ChangeAdminPassword(newPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating admin password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Admin password updated"})
}

func (a *AdminModule) exportCSV(c *gin.Context) {
	pages, links := a.store.ExportRecords()

	c.Header("Content-Disposition", `attachment; filename="bookmarket_export.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if err := export.WriteCSV(c.Writer, pages, links); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error exporting data"})
	}
}

func (a *AdminModule) exportExcel(c *gin.Context) {
	pages, links := a.store.ExportRecords()

	c.Header("Content-Disposition", `attachment; filename="bookmarket_export.xls"`)
	c.Header("Content-Type", "application/vnd.ms-excel")
	c.Status(http.StatusOK)

	if err := export.WriteExcel(c.Writer, pages, links); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error exporting data"})
	}
}

// DayVisitChart and LinkVisitChart carry percentages precomputed for the bar
// charts on the visits page.
type DayVisitChart struct {
	Date       string
	Count      int64
	Percentage float64
}

type LinkVisitChart struct {
	LinkID     string
	FullLink   string
	Count      int64
	Percentage float64
}

func (a *AdminModule) visitsPage(c *gin.Context) {
	if a.analytics == nil {
		c.HTML(http.StatusOK, "admin_visits.html", gin.H{
			"analyticsEnabled": false,
		})
		return
	}

	visitsByDay := a.analytics.GetVisitsByDay(15)
	topLinks := a.analytics.GetTopLinks(30, 10)

	for i := range topLinks {
		if link, ok := a.store.FindLinkByID(topLinks[i].LinkID); ok {
			topLinks[i].FullLink = link.FullLink
		} else {
			topLinks[i].FullLink = "Link deleted"
		}
	}

	maxVisitsPerDay := int64(1)
	for _, day := range visitsByDay {
		if day.Count > maxVisitsPerDay {
			maxVisitsPerDay = day.Count
		}
	}

	maxVisitsPerLink := int64(1)
	for _, link := range topLinks {
		if link.Count > maxVisitsPerLink {
			maxVisitsPerLink = link.Count
		}
	}

	dayCharts := make([]DayVisitChart, len(visitsByDay))
	for i, day := range visitsByDay {
		dayCharts[i] = DayVisitChart{
			Date:       day.Date,
			Count:      day.Count,
			Percentage: (float64(day.Count) / float64(maxVisitsPerDay)) * 100,
		}
	}

	linkCharts := make([]LinkVisitChart, len(topLinks))
	for i, link := range topLinks {
		linkCharts[i] = LinkVisitChart{
			LinkID:     link.LinkID,
			FullLink:   link.FullLink,
			Count:      link.Count,
			Percentage: (float64(link.Count) / float64(maxVisitsPerLink)) * 100,
		}
	}

	c.HTML(http.StatusOK, "admin_visits.html", gin.H{
		"analyticsEnabled": true,
		"visitsByDay":      dayCharts,
		"topLinks":         linkCharts,
	})
}
