// Package export turns the store's record sets into downloadable files. The
// store decides what is exported; this package only does the encoding.
package export

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"bookmarket/models"
)

var csvHeader = []string{"type", "id", "title", "fullLink", "pageId", "visits", "createdAt"}

// WriteCSV writes pages then links as one flat CSV, one row per record.
func WriteCSV(w io.Writer, pages []models.Page, links []models.Link) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, page := range pages {
		row := []string{"page", page.ID, page.Title, "", "", "", page.CreatedAt}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for _, link := range links {
		row := []string{"link", link.ID, "", link.FullLink, link.PageID, strconv.Itoa(link.Visits), link.CreatedAt}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// excelTemplate renders the Excel-compatible HTML table flavor that browsers
// download as an .xls file.
var excelTemplate = template.Must(template.New("excel").Parse(`<html>
<head><meta charset="utf-8"></head>
<body>
<table border="1">
<tr><th>Type</th><th>ID</th><th>Title</th><th>Full Link</th><th>Page ID</th><th>Visits</th><th>Created At</th></tr>
{{range .Pages}}<tr><td>page</td><td>{{.ID}}</td><td>{{.Title}}</td><td></td><td></td><td></td><td>{{.CreatedAt}}</td></tr>
{{end}}{{range .Links}}<tr><td>link</td><td>{{.ID}}</td><td></td><td>{{.FullLink}}</td><td>{{.PageID}}</td><td>{{.Visits}}</td><td>{{.CreatedAt}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// WriteExcel writes the records as an HTML table Excel opens natively.
func WriteExcel(w io.Writer, pages []models.Page, links []models.Link) error {
	data := struct {
		Pages []models.Page
		Links []models.Link
	}{pages, links}

	if err := excelTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering excel export: %w", err)
	}
	return nil
}
