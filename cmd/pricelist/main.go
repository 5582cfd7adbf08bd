package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/catalog"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/config"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/connectors"
	gmailconnector "github.com/Rynawkin/bakircilar-b2b-sub003/internal/connectors/gmail"
	imapconnector "github.com/Rynawkin/bakircilar-b2b-sub003/internal/connectors/imap"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/listener"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/pipeline"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/storage"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/supplier"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "catalog:sync":
		svc := catalog.NewSyncService(cfg, db)
		if prev, err := svc.LastSync(); err == nil && prev != nil {
			fmt.Printf("previous sync: %s\n", prev.Format("2006-01-02 15:04:05"))
		}
		count, err := svc.Sync(context.Background())
		must(err)
		fmt.Printf("catalog sync complete: %d products\n", count)

	case "supplier:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "supplier config json (single object or array)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		count, err := importSuppliers(db, *file)
		must(err)
		fmt.Printf("imported %d supplier configs\n", count)

	case "supplier:list":
		suppliers, err := db.ListSuppliers()
		must(err)
		for _, s := range suppliers {
			fmt.Printf("%d\t%s\temails=%s\n", s.ID, s.Name, strings.Join(s.SenderEmails, ","))
		}

	case "upload":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		supplierID := fs.Int("supplier", 0, "supplier id")
		overridePath := fs.String("override", "", "per-upload override json")
		_ = fs.Parse(os.Args[2:])
		if *supplierID == 0 || fs.NArg() == 0 {
			must(fmt.Errorf("--supplier and at least one file are required"))
		}
		files, err := readFiles(fs.Args())
		must(err)
		override, err := readOverride(*overridePath)
		must(err)
		svc := pipeline.NewUploadService(db, cfg)
		batch, err := svc.Run(context.Background(), *supplierID, override, files)
		if batch != nil {
			fmt.Printf("batch %s status=%s total=%d matched=%d unmatched=%d multi=%d\n",
				batch.ID, batch.Status, batch.TotalItems, batch.MatchedItems, batch.UnmatchedItems, batch.MultiMatchItems)
		}
		must(err)

	case "preview":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		supplierID := fs.Int("supplier", 0, "supplier id")
		overridePath := fs.String("override", "", "per-upload override json")
		_ = fs.Parse(os.Args[2:])
		if *supplierID == 0 || fs.NArg() == 0 {
			must(fmt.Errorf("--supplier and at least one file are required"))
		}
		files, err := readFiles(fs.Args())
		must(err)
		override, err := readOverride(*overridePath)
		must(err)
		svc := pipeline.NewUploadService(db, cfg)
		previews, err := svc.Preview(*supplierID, override, files)
		must(err)
		printPreviews(previews)

	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batchID := fs.String("batch", "", "batch id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*batchID) == "" {
			must(fmt.Errorf("--batch is required"))
		}
		report, err := pipeline.BuildReport(db, *batchID, cfg.PriceOutlierRatio)
		must(err)
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.OutputDir, *batchID+".xlsx")
		}
		must(pipeline.ExportXLSX(report, path))
		fmt.Printf("exported batch %s to %s\n", *batchID, path)

	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "imap", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)

	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		uploads := pipeline.NewUploadService(db, cfg)
		processor := pipeline.NewMailProcessor(db, uploads)
		result, err := processor.ProcessFetched(context.Background(), *batch)
		must(err)
		fmt.Printf("mail process done processed=%d ignored=%d failed=%d\n", result.Processed, result.Ignored, result.Failed)

	case "mail:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))

	default:
		usage()
		os.Exit(1)
	}
}

func importSuppliers(db *storage.DB, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var configs []supplier.Config
	if err := json.Unmarshal(raw, &configs); err != nil {
		var single supplier.Config
		if err := json.Unmarshal(raw, &single); err != nil {
			return 0, fmt.Errorf("parse %s: %w", path, err)
		}
		configs = []supplier.Config{single}
	}
	for _, cfg := range configs {
		if cfg.ID == 0 {
			return 0, fmt.Errorf("supplier config without id in %s", path)
		}
		if err := db.UpsertSupplier(cfg); err != nil {
			return 0, err
		}
	}
	return len(configs), nil
}

func readFiles(paths []string) ([]pipeline.UploadFile, error) {
	files := make([]pipeline.UploadFile, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, pipeline.UploadFile{Name: filepath.Base(p), Content: content})
	}
	return files, nil
}

func readOverride(path string) (*supplier.Override, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var override supplier.Override
	if err := json.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &override, nil
}

func printPreviews(previews []pipeline.FilePreview) {
	for _, p := range previews {
		fmt.Printf("%s: strategy=%s headerRow=%d code=%d name=%d price=%d items=%d\n",
			p.Filename, p.Strategy, p.HeaderRow, p.Mapping.Code, p.Mapping.Name, p.Mapping.Price, len(p.Items))
		for _, row := range p.SampleRows {
			fmt.Printf("  | %s\n", strings.Join(row, " | "))
		}
		for i, item := range p.Items {
			if i >= 10 {
				fmt.Printf("  ... %d more items\n", len(p.Items)-i)
				break
			}
			price := ""
			if item.SourcePrice != nil {
				price = fmt.Sprintf("%.4f", *item.SourcePrice)
			}
			name := ""
			if item.SupplierName != nil {
				name = *item.SupplierName
			}
			fmt.Printf("  %s\t%s\t%s\n", item.SupplierCode, name, price)
		}
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: pricelist <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:sync")
	fmt.Println("  supplier:import --file <json>")
	fmt.Println("  supplier:list")
	fmt.Println("  upload --supplier <id> [--override <json>] <file>...")
	fmt.Println("  preview --supplier <id> [--override <json>] <file>...")
	fmt.Println("  export:xlsx --batch <id> [--out <path>]")
	fmt.Println("  mail:fetch [--provider imap|gmail] [--label INBOX] [--max 50]")
	fmt.Println("  mail:process [--batch 20]")
	fmt.Println("  mail:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
