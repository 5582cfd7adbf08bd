package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/Rynawkin/bakircilar-b2b-sub003/internal"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/storage"
	"github.com/Rynawkin/bakircilar-b2b-sub003/internal/util"
)

const (
	MailStatusFetched   = "fetched"
	MailStatusProcessed = "processed"
	MailStatusIgnored   = "ignored"
	MailStatusFailed    = "failed"
)

type MailProcessor struct {
	db      *storage.DB
	uploads *UploadService
}

func NewMailProcessor(db *storage.DB, uploads *UploadService) *MailProcessor {
	return &MailProcessor{db: db, uploads: uploads}
}

type MailProcessResult struct {
	Processed int
	Ignored   int
	Failed    int
}

func (p *MailProcessor) ProcessFetched(ctx context.Context, limit int) (MailProcessResult, error) {
	mails, err := p.db.ListMailsByStatus(MailStatusFetched, limit)
	if err != nil {
		return MailProcessResult{}, err
	}

	var result MailProcessResult
	for _, mail := range mails {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		status, batchID := p.processOne(ctx, mail)
		if err := p.db.UpdateMailStatus(mail.ID, status, batchID); err != nil {
			return result, err
		}
		switch status {
		case MailStatusProcessed:
			result.Processed++
		case MailStatusIgnored:
			result.Ignored++
		default:
			result.Failed++
		}
	}
	return result, nil
}

func (p *MailProcessor) processOne(ctx context.Context, mail internal.MailRow) (string, *string) {
	raw, err := os.ReadFile(mail.RawRef)
	if err != nil {
		fmt.Printf("mail %d: read raw: %v\n", mail.ID, err)
		return MailStatusFailed, nil
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		fmt.Printf("mail %d: parse mime: %v\n", mail.ID, err)
		return MailStatusFailed, nil
	}

	sender := mail.Sender
	if sender == "" {
		sender = env.GetHeader("From")
	}
	scfg, err := p.db.GetSupplierByEmail(sender)
	if err != nil {
		fmt.Printf("mail %d: supplier lookup: %v\n", mail.ID, err)
		return MailStatusFailed, nil
	}
	if scfg == nil {
		fmt.Printf("mail %d: no supplier configured for sender %q\n", mail.ID, sender)
		return MailStatusIgnored, nil
	}

	files := priceListFiles(env)
	if len(files) == 0 {
		fmt.Printf("mail %d: no price-list content found\n", mail.ID)
		return MailStatusIgnored, nil
	}

	batch, err := p.uploads.Run(ctx, scfg.ID, nil, files)
	var batchID *string
	if batch != nil {
		batchID = util.StringPtr(batch.ID)
	}
	if err != nil {
		fmt.Printf("mail %d: upload: %v\n", mail.ID, err)
		return MailStatusFailed, batchID
	}
	fmt.Printf("mail %d: processed as batch %s (%d items)\n", mail.ID, batch.ID, batch.TotalItems)
	return MailStatusProcessed, batchID
}

func priceListFiles(env *enmime.Envelope) []UploadFile {
	var files []UploadFile
	for _, att := range append(env.Attachments, env.Inlines...) {
		if att.FileName == "" || len(att.Content) == 0 {
			continue
		}
		switch strings.ToLower(filepath.Ext(att.FileName)) {
		case ".xlsx", ".xls", ".pdf", ".html", ".htm":
			files = append(files, UploadFile{Name: att.FileName, Content: att.Content})
		}
	}
	if len(files) == 0 && strings.TrimSpace(env.HTML) != "" {
		files = append(files, UploadFile{Name: "body.html", Content: []byte(env.HTML)})
	}
	return files
}
