// Package snapshot publishes candidate sets as JSON documents.
//
// Layout under the blob root:
//
//	<name>.json                          latest set
//	archive/<name>_<YYYYMMDD_HHMMSS>.json one copy per publish
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"stellar-copytrade-lab/internal/blob"
	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

// ArchiveDir holds timestamped copies.
const ArchiveDir = "archive"

const timestampLayout = "20060102_150405"

const contentType = "application/json"

// Publisher writes snapshots through a blob.Writer.
type Publisher struct {
	writer blob.Writer
	logger *zap.Logger
	now    func() time.Time
}

// NewPublisher creates a Publisher.
func NewPublisher(w blob.Writer, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, logger: logger.Named("snapshot"), now: time.Now}
}

// LatestPath returns the path of the latest snapshot for name.
func LatestPath(name string) string {
	return name + ".json"
}

// ArchivePath returns the archive path for name at t (UTC).
func ArchivePath(name string, t time.Time) string {
	return ArchiveDir + "/" + name + "_" + t.UTC().Format(timestampLayout) + ".json"
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("snapshot name %q: %w", name, storage.ErrInvalidInput)
	}
	return nil
}

// Publish writes the archive copy, then the latest document.
// The returned paths are (latest, archive).
func (p *Publisher) Publish(ctx context.Context, name string, set *domain.CandidateSet) (string, string, error) {
	if err := validateName(name); err != nil {
		return "", "", err
	}
	if set == nil {
		return "", "", fmt.Errorf("nil candidate set: %w", storage.ErrInvalidInput)
	}

	data, err := Marshal(set)
	if err != nil {
		return "", "", err
	}

	at := set.GeneratedAt
	if at.IsZero() {
		at = p.now()
	}
	latest := LatestPath(name)
	archive := ArchivePath(name, at)

	if err := p.writer.Put(ctx, archive, bytes.NewReader(data), contentType); err != nil {
		return "", "", fmt.Errorf("write archive: %w", err)
	}
	if err := p.writer.Put(ctx, latest, bytes.NewReader(data), contentType); err != nil {
		return "", "", fmt.Errorf("write latest: %w", err)
	}

	p.logger.Info("published snapshot",
		zap.String("latest", latest),
		zap.String("archive", archive),
		zap.Int("primary", len(set.PrimaryCandidates)),
		zap.Int("secondary", len(set.SecondaryCandidates)),
	)
	return latest, archive, nil
}

// Marshal encodes a set with empty lists instead of null.
func Marshal(set *domain.CandidateSet) ([]byte, error) {
	out := set.Clone()
	if out.PrimaryCandidates == nil {
		out.PrimaryCandidates = []*domain.WalletScoreRecord{}
	}
	if out.SecondaryCandidates == nil {
		out.SecondaryCandidates = []*domain.WalletScoreRecord{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate set: %w", err)
	}
	return data, nil
}

// Load reads the latest snapshot for name.
func Load(ctx context.Context, r blob.Reader, name string) (*domain.CandidateSet, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	rc, err := r.Get(ctx, LatestPath(name))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var set domain.CandidateSet
	if err := json.NewDecoder(rc).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return &set, nil
}
