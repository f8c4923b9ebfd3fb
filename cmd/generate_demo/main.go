// Command generate_demo creates a demo data directory: an example template,
// a few placeholder media files and a database that already knows them.
// Usage: go run cmd/generate_demo/main.go [-dir path/to/demo]
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/imgmanager/internal/audit"
	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/database"
	auditRepo "github.com/mrlokans/imgmanager/internal/database/audit"
	"github.com/mrlokans/imgmanager/internal/database/media"
	"github.com/mrlokans/imgmanager/internal/database/visited"
	"github.com/mrlokans/imgmanager/internal/library"
	"github.com/mrlokans/imgmanager/internal/logging"
	"github.com/mrlokans/imgmanager/internal/template"
)

const defaultDemoDir = "./demo"

// demoTemplate crawls a paginated listing of zip albums, unpacks each one,
// drops the text files shipped inside and registers the rest.
const demoTemplate = `<?xml version="1.0"?>
<site root="https://gallery.example.com" authenticated="true">
  <page url="/login">
    <entry regex="name=&quot;csrf&quot; value=&quot;(\w+)&quot;">
      <action type="login" form-encoded="user={username} pass={password} csrf={0}"/>
    </entry>
  </page>
  <page url="/albums?page={index}" start="1" save-progress="true">
    <entry regex="href=&quot;/albums/(\d+)&quot;" enumerate="all">
      <action type="download" url="/albums/{0}/download.zip"/>
      <action type="extract"/>
      <action type="delete" regex=".*\.(txt|nfo)"/>
      <action type="register"/>
    </entry>
  </page>
</site>
`

var demoMedia = []string{
	"albums/1/beach.jpg",
	"albums/1/sunset.png",
	"albums/2/harbour.jpg",
	"albums/2/waves.mp4",
}

var demoVisited = []string{
	"https://gallery.example.com/albums?page=1",
	"https://gallery.example.com/albums?page=2",
}

func main() {
	dir := flag.String("dir", defaultDemoDir, "directory to generate the demo data in")
	flag.Parse()

	logging.Setup(false)
	if err := generate(*dir); err != nil {
		slog.Error("failed to generate demo data", "error", err)
		os.Exit(1)
	}
	slog.Info("demo data generated", "dir", *dir)
}

func generate(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}

	templatesDir := filepath.Join(dir, config.TemplatesDirName)
	if err := os.MkdirAll(templatesDir, 0755); err != nil {
		return err
	}
	if _, err := template.Load(strings.NewReader(demoTemplate)); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(templatesDir, "gallery.xml"), []byte(demoTemplate), 0644); err != nil {
		return err
	}

	downloads := filepath.Join(dir, "downloads")
	for _, name := range demoMedia {
		path := filepath.Join(downloads, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte("demo"), 0644); err != nil {
			return err
		}
	}

	db, err := database.NewDatabase(filepath.Join(dir, config.DatabaseFileName))
	if err != nil {
		return err
	}
	defer db.Close()

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))

	result, err := library.NewService(media.NewRepository(db.DB)).Add(downloads)
	auditService.LogRegister(downloads, result.Registered, result.Total, err)
	if err != nil {
		return err
	}

	visitedRepo := visited.NewRepository(db.DB)
	for _, url := range demoVisited {
		if err := visitedRepo.MarkVisited(url); err != nil {
			return err
		}
	}

	slog.Info("registered demo media", "registered", result.Registered, "total", result.Total)
	return nil
}
