package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/loopdeck/account-transfer/pkg/jobs"
	"github.com/loopdeck/account-transfer/pkg/transfer/database"
	"github.com/loopdeck/account-transfer/pkg/transfer/models"
	"github.com/loopdeck/account-transfer/pkg/transfer/richtext"
	"github.com/loopdeck/account-transfer/pkg/transfer/services"
	"github.com/loopdeck/account-transfer/pkg/transfer/storage"
)

func main() {
	exportAccount := flag.String("export", "", "account id to export")
	validateImport := flag.String("validate", "", "import id to validate without writing")
	runImport := flag.String("import", "", "import id to validate and process")
	resumeState := flag.String("resume-state", "", "path to the cursor checkpoint file (default per import id)")
	storageDir := flag.String("storage", "storage", "root directory for blob storage")
	serveCleanup := flag.Bool("serve-cleanup", false, "keep running and purge expired exports daily")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	db, err := connectDB()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	secret := os.Getenv("REFERENCE_SIGNING_SECRET")
	if secret == "" {
		log.Fatal("REFERENCE_SIGNING_SECRET must be set")
	}
	signer := richtext.NewSigner([]byte(secret))
	store := storage.NewDiskService(*storageDir)

	ctx := context.Background()
	switch {
	case *exportAccount != "":
		svc := services.NewExportService(db, store, signer)
		exp := &models.Export{ID: models.NewID(), AccountID: *exportAccount, Status: models.StatusPending}
		if err := db.Create(exp).Error; err != nil {
			log.Fatalf("create export job: %v", err)
		}
		if err := svc.Build(ctx, exp); err != nil {
			log.Fatalf("export failed: %v", err)
		}
		log.Printf("export artifact stored at %s", exp.FileKey)

	case *validateImport != "":
		svc := services.NewImportService(db, store, signer)
		imp, err := loadImport(db, *validateImport)
		if err != nil {
			log.Fatalf("load import job: %v", err)
		}
		if err := svc.Validate(ctx, imp, nil, nil); err != nil {
			log.Fatalf("validation failed: %v", err)
		}
		log.Printf("archive for import %s is valid", imp.ID)

	case *runImport != "":
		svc := services.NewImportService(db, store, signer)
		imp, err := loadImport(db, *runImport)
		if err != nil {
			log.Fatalf("load import job: %v", err)
		}
		state := *resumeState
		if state == "" {
			state = filepath.Join(os.TempDir(), "account-import-"+imp.ID+".cursors.json")
		}
		if err := jobs.ImportAccountData(ctx, svc, imp, &jobs.FileCursorStore{Path: state}); err != nil {
			log.Fatalf("import failed: %v", err)
		}

	case *serveCleanup:
		svc := services.NewExportService(db, store, signer)
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		jobs.ScheduleExportCleanup(ctx, svc)
		log.Println("export cleanup scheduler running")
		<-ctx.Done()

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func loadImport(db *gorm.DB, id string) (*models.Import, error) {
	var imp models.Import
	if err := db.First(&imp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

func connectDB() (*gorm.DB, error) {
	host := os.Getenv("DB_HOSTNAME")
	user := os.Getenv("DB_USERNAME")
	pass := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_DBNAME")
	schema := os.Getenv("DB_SCHEMA")
	if host == "" || user == "" || dbname == "" {
		return nil, fmt.Errorf("missing DB env vars; need DB_HOSTNAME, DB_USERNAME, DB_DBNAME")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   host + ":5432",
		Path:   dbname,
	}
	u.User = url.UserPassword(user, pass)

	q := u.Query()
	if strings.TrimSpace(schema) != "" {
		q.Set("search_path", schema)
	}
	u.RawQuery = q.Encode()

	return database.Connect(u.String())
}
