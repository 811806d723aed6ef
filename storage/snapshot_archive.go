package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/Dosada05/bracket-tracker/models"
	"golang.org/x/sync/errgroup"
)

const snapshotContentType = "application/json"

// SnapshotArchive keeps a copy of every saved bracket state outside the
// database. Forget removes the "latest" snapshot of a tournament whose
// bracket was deleted; versioned snapshots stay as history.
type SnapshotArchive interface {
	Archive(ctx context.Context, tournamentID string, state *models.BracketState) error
	Forget(ctx context.Context, tournamentID string) error
}

type bucketSnapshotArchive struct {
	uploader FileUploader
}

// NewSnapshotArchive writes each snapshot twice: under a versioned key and
// under a "latest" key that always points at the newest state.
func NewSnapshotArchive(uploader FileUploader) SnapshotArchive {
	return &bucketSnapshotArchive{uploader: uploader}
}

func SnapshotKey(tournamentID string, version int) string {
	return path.Join("tournaments", tournamentID, fmt.Sprintf("bracket-v%d.json", version))
}

func LatestSnapshotKey(tournamentID string) string {
	return path.Join("tournaments", tournamentID, "bracket-latest.json")
}

func (a *bucketSnapshotArchive) Archive(ctx context.Context, tournamentID string, state *models.BracketState) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for tournament %s: %w", tournamentID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range []string{SnapshotKey(tournamentID, state.Version), LatestSnapshotKey(tournamentID)} {
		g.Go(func() error {
			_, err := a.uploader.Upload(gctx, key, snapshotContentType, body)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to archive snapshot for tournament %s: %w", tournamentID, err)
	}
	return nil
}

func (a *bucketSnapshotArchive) Forget(ctx context.Context, tournamentID string) error {
	if err := a.uploader.Delete(ctx, LatestSnapshotKey(tournamentID)); err != nil {
		return fmt.Errorf("failed to forget snapshot for tournament %s: %w", tournamentID, err)
	}
	return nil
}

type noopSnapshotArchive struct{}

// NewNoopSnapshotArchive is used when no bucket is configured.
func NewNoopSnapshotArchive() SnapshotArchive {
	return noopSnapshotArchive{}
}

func (noopSnapshotArchive) Archive(context.Context, string, *models.BracketState) error {
	return nil
}

func (noopSnapshotArchive) Forget(context.Context, string) error {
	return nil
}
