package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/config"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/connectors"
	gmailconnector "github.com/Rynawkin/bakircilar-b2b-sub003/internal/connectors/gmail"
	imapconnector "github.com/Rynawkin/bakircilar-b2b-sub003/internal/connectors/imap"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/pipeline"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/storage"
)

type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	uploads := pipeline.NewUploadService(s.db, s.cfg)
	processor := pipeline.NewMailProcessor(s.db, uploads)
	procResult, err := processor.ProcessFetched(ctx, s.cfg.MailListenerBatch)
	if err != nil {
		return err
	}

	if s.cfg.MailListenerAutoExport {
		if err := s.exportProcessed(provider); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d processed=%d ignored=%d failed=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, procResult.Processed, procResult.Ignored, procResult.Failed)
	return nil
}

func (s *Service) exportProcessed(provider string) error {
	mails, err := s.db.ListMailsByStatus(pipeline.MailStatusProcessed, 200)
	if err != nil {
		return err
	}

	for _, mail := range mails {
		if mail.Provider != provider || mail.BatchID == nil {
			continue
		}
		report, err := pipeline.BuildReport(s.db, *mail.BatchID, s.cfg.PriceOutlierRatio)
		if err != nil {
			return err
		}
		filename := fmt.Sprintf("%d_%s.xlsx", mail.ID, sanitizeMessageID(mail.MessageID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.ExportXLSX(report, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateMailStatus(mail.ID, "exported", nil)
	}
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
