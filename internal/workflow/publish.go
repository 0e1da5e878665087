package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/JaimeStill/curioscore/internal/curios"
	"github.com/JaimeStill/curioscore/pkg/storage"
)

// Publish upserts the publishable results of the artifact at path. When the
// file is missing locally and an archive is configured, the archived copy
// with the same name is used instead.
func Publish(ctx context.Context, rt *Runtime, path string) (*PublishReport, error) {
	art, err := loadArtifact(ctx, rt, path)
	if err != nil {
		return nil, err
	}

	updates := make([]curios.Update, 0, len(art.Results))
	rejected := 0
	for _, r := range art.Results {
		if !r.Publishable() {
			continue
		}
		// One out-of-range row would fail the CHECK and sink its whole chunk.
		if !curios.ScoreInRange(r.Score) {
			rt.Logger.WarnContext(ctx, "score out of range, not published",
				"curio_id", r.CurioID,
				"score", r.Score,
			)
			rejected++
			continue
		}
		updates = append(updates, r.Update())
	}

	rt.Logger.InfoContext(ctx, "publishing artifact",
		"path", path,
		"results", len(art.Results),
		"publishable", len(updates),
		"rejected", rejected,
	)

	n, err := rt.Store.Upsert(ctx, updates)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", path, err)
	}

	rt.Logger.InfoContext(ctx, "publish complete", "path", path, "updated", n)
	return &PublishReport{Status: StatusComplete, Updated: n}, nil
}

func loadArtifact(ctx context.Context, rt *Runtime, path string) (*Artifact, error) {
	art, err := ReadArtifact(path)
	if err == nil {
		return art, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if rt.Archive == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoArtifact, path)
	}

	key := rt.Archive.Key(filepath.Base(path))
	rc, err := rt.Archive.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s (archive key %s)", ErrNoArtifact, path, key)
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()

	rt.Logger.InfoContext(ctx, "artifact loaded from archive", "key", key)
	return DecodeArtifact(rc)
}
