// Package ingest populates the read-only database browser from static files.
// It never writes to the data directory; operators add files by hand and list
// them in the folder's files.json manifest.
package ingest

import (
	"encoding/json"
	"io/fs"
	"log"
	"path"
	"strings"
)

// FolderType tells the database browser how a file's rows were obtained.
const (
	FolderTxt  = "txt"
	FolderPage = "page"
)

// Row is one parsed "label: value" line.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FileRows holds every parsed row of one manifest file.
type FileRows struct {
	FileName   string `json:"fileName"`
	Rows       []Row  `json:"rows"`
	FolderType string `json:"folderType"`
}

// Loader reads manifest-listed files out of the datafiles tree.
type Loader struct {
	fsys fs.FS
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load reads the txt and pages manifests and returns one record per listed
// file. Any single file that cannot be read yields an empty row set; a failed
// manifest read yields no records for that folder. Nothing aborts the load.
func (l *Loader) Load() []FileRows {
	var files []FileRows

	for _, name := range l.readManifest("txt") {
		content, err := fs.ReadFile(l.fsys, path.Join("txt", name))
		if err != nil {
			log.Printf("Error reading text file %s: %v", name, err)
			files = append(files, FileRows{FileName: name, Rows: []Row{}, FolderType: FolderTxt})
			continue
		}
		files = append(files, FileRows{
			FileName:   name,
			Rows:       ParseRows(string(content)),
			FolderType: FolderTxt,
		})
	}

	// Page files are HTML; only metadata rows are synthesized for them.
	for _, name := range l.readManifest("pages") {
		files = append(files, FileRows{
			FileName: name,
			Rows: []Row{
				{Label: "Title", Value: strings.TrimSuffix(name, path.Ext(name))},
				{Label: "Type", Value: "HTML Page"},
				{Label: "Path", Value: "/datafiles/pages/" + name},
			},
			FolderType: FolderPage,
		})
	}

	return files
}

// PageFiles returns only the HTML page entries, which back file-based pages.
func (l *Loader) PageFiles() []FileRows {
	var pages []FileRows
	for _, file := range l.Load() {
		if file.FolderType == FolderPage {
			pages = append(pages, file)
		}
	}
	return pages
}

// readManifest parses the folder's files.json, an ordered JSON array of file
// names. Failure yields an empty list.
func (l *Loader) readManifest(folder string) []string {
	raw, err := fs.ReadFile(l.fsys, path.Join(folder, "files.json"))
	if err != nil {
		log.Printf("Error reading %s manifest: %v", folder, err)
		return nil
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		log.Printf("Error parsing %s manifest: %v", folder, err)
		return nil
	}
	return names
}

// ParseRows splits text into "label: value" rows. The split happens on the
// first colon only; lines without a colon, or whose label and value are both
// empty, are dropped.
func ParseRows(content string) []Row {
	var rows []Row
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		label := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if label == "" && value == "" {
			continue
		}
		rows = append(rows, Row{Label: label, Value: value})
	}
	return rows
}
