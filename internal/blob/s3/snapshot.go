package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/davidhsu/binfolio/internal/domain"
	"github.com/davidhsu/binfolio/internal/portfolio"
)

// SnapshotArchiver uploads portfolio snapshots to blob storage as CSV files,
// partitioned by month, and prunes old snapshots past a retention count.
type SnapshotArchiver struct {
	writer domain.BlobWriter
	reader *Reader
}

// NewSnapshotArchiver creates a SnapshotArchiver. reader may be nil, in which
// case Prune is a no-op.
func NewSnapshotArchiver(writer domain.BlobWriter, reader *Reader) *SnapshotArchiver {
	return &SnapshotArchiver{writer: writer, reader: reader}
}

// Archive renders the summary to CSV and uploads it. The object key is
// returned so callers can log or notify with it.
//
//	snapshots/2026-08/portfolio-20260830-140501.csv
func (a *SnapshotArchiver) Archive(ctx context.Context, summary domain.PortfolioSummary, at time.Time) (string, error) {
	var buf bytes.Buffer
	if err := portfolio.WriteCSV(&buf, summary); err != nil {
		return "", fmt.Errorf("s3blob: render snapshot csv: %w", err)
	}

	path := snapshotPath(at)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf.Bytes()), "text/csv"); err != nil {
		return "", fmt.Errorf("s3blob: upload snapshot %s: %w", path, err)
	}
	return path, nil
}

// Prune deletes the oldest snapshots so at most keep remain. keep <= 0
// disables pruning.
func (a *SnapshotArchiver) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 || a.reader == nil {
		return 0, nil
	}

	infos, err := a.reader.List(ctx, "snapshots/")
	if err != nil {
		return 0, fmt.Errorf("s3blob: list snapshots: %w", err)
	}
	if len(infos) <= keep {
		return 0, nil
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].LastModified.Before(infos[j].LastModified)
	})

	deleted := 0
	for _, info := range infos[:len(infos)-keep] {
		if err := a.reader.Delete(ctx, info.Path); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func snapshotPath(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("snapshots/%s/portfolio-%s.csv", at.Format("2006-01"), at.Format("20060102-150405"))
}
