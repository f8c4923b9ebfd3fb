// Package database provides the data access layer for the media library.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── backup.go        # Rolling file backups of the sqlite database
//	├── media/           # Registered media files (dedupe by local path)
//	├── visited/         # Visited markers for save-progress pages
//	└── audit/           # Crawl and register run history
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./db.sqlite")
//
//	mediaRepo := media.NewRepository(db.DB)
//	visitedRepo := visited.NewRepository(db.DB)
//
//	exists, err := mediaRepo.ExistsByPath("/data/files/a.jpg")
//	seen, err := visitedRepo.IsVisited("https://example.com/list?p=0")
//
// # Interface Implementations
//
//   - media.Repository: implements library.MediaStore
//   - visited.Repository: implements crawler.VisitedStore
//   - audit.Repository: backs audit.Service
//
// Compile-time checks live in internal/interfaces.
package database
