package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oddskit/surebet/internal/domain"
)

// uploadPartSize is the multipart chunk size used for large archives.
const uploadPartSize int64 = 5 * 1024 * 1024

// Archiver exports execution audit rows older than a cutoff to JSONL
// objects under archive/executions/. Deleting archived rows from the
// primary store is a separate, explicit operation run after the archive has
// been verified.
type Archiver struct {
	client *Client
	store  domain.ExecutionStore
}

// NewArchiver creates an Archiver reading from the given store.
func NewArchiver(client *Client, store domain.ExecutionStore) *Archiver {
	return &Archiver{client: client, store: store}
}

// ArchiveBefore uploads all audit rows created before the cutoff and
// returns the number of archived records. No object is written when there
// is nothing to archive.
func (a *Archiver) ArchiveBefore(ctx context.Context, before time.Time) (int, error) {
	rows, err := a.store.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: query executions: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return 0, fmt.Errorf("s3blob: marshal execution %s: %w", row.ID, err)
		}
	}

	key := fmt.Sprintf("archive/executions/%s.jsonl", before.UTC().Format("2006-01-02"))
	uploader := manager.NewUploader(a.client.S3(), func(u *manager.Uploader) {
		u.PartSize = uploadPartSize
	})
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.client.Bucket()),
		Key:         aws.String(key),
		Body:        &buf,
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return 0, fmt.Errorf("s3blob: upload %s: %w", key, err)
	}
	return len(rows), nil
}

var _ domain.Archiver = (*Archiver)(nil)
