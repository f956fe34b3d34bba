// Package attachments reconciles per-person media folders with the
// attachment rows tracking them. Files found on disk gain rows; with prune
// enabled, rows whose backing files are gone are removed. Dry-run walks
// everything and counts what it would change without writing.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/jwoglom/djtree/pkg/appcontext"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/store"
	"github.com/jwoglom/djtree/pkg/tracing"
)

// Options configure one sync run.
type Options struct {
	// TreeID scopes the persons and attachment rows being reconciled.
	TreeID uuid.UUID
	// DryRun counts every change without writing or deleting anything.
	DryRun bool
	// Prune removes attachment rows whose backing files no longer exist in
	// the person's folder.
	Prune bool
}

// Stats are the counters accumulated over one sync run.
type Stats struct {
	FoldersScanned     int      `json:"folders_scanned"`
	FilesSeen          int      `json:"files_seen"`
	AttachmentsCreated int      `json:"attachments_created"`
	AttachmentsPruned  int      `json:"attachments_pruned"`
	FilesSkipped       int      `json:"files_skipped"`
	Errors             []string `json:"errors,omitempty"`
}

// Syncer walks media folders and keeps attachment rows in step with them.
type Syncer struct {
	logger ectologger.Logger
	store  store.AttachmentStore
}

func NewSyncer(logger ectologger.Logger, st store.AttachmentStore) *Syncer {
	return &Syncer{logger: logger, store: st}
}

// skipNames are bookkeeping files that never become attachments.
var skipNames = map[string]bool{
	".DS_Store":  true,
	"Thumbs.db":  true,
	".gitkeep":   true,
	".gitignore": true,
}

func shouldSkipFile(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || skipNames[name]
}

// folderName returns the media folder name for a person: Last_First_<id>,
// with non-alphanumeric runes collapsed to underscores, falling back to
// Unknown_Person_<id> when the person has no usable name.
func folderName(person *models.Person) string {
	name := person.PrimaryName()
	if name == nil {
		return fmt.Sprintf("Unknown_Person_%s", person.ID)
	}

	var parts []string
	if name.Last != "" {
		parts = append(parts, sanitizeComponent(name.Last))
	}
	if name.First != "" {
		parts = append(parts, sanitizeComponent(name.First))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Unknown_Person_%s", person.ID)
	}

	return strings.Join(parts, "_") + "_" + person.ID.String()
}

func sanitizeComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Sync reconciles every person folder under <root>/people. A missing media
// root fails the run; a person without a folder is skipped, and per-person
// failures land in the stats while the run continues.
func (s *Syncer) Sync(ctx context.Context, root string, opts Options) (*Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "attachments.Syncer.Sync")
	defer span.End()

	ctx = appcontext.SetTreeID(ctx, opts.TreeID.String())
	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"root":    root,
		"tree_id": opts.TreeID,
		"dry_run": opts.DryRun,
		"prune":   opts.Prune,
	})

	base := filepath.Join(root, "people")
	if _, err := os.Stat(base); err != nil {
		log.WithError(err).Error("Media root is not readable")
		return nil, fmt.Errorf("media root %s is not readable: %w", base, err)
	}

	persons, err := s.store.ListPersons(ctx, opts.TreeID)
	if err != nil {
		log.WithError(err).Error("Failed to list persons")
		return nil, err
	}

	stats := &Stats{}
	for _, person := range persons {
		folder := filepath.Join(base, folderName(person))
		if _, err := os.Stat(folder); errors.Is(err, fs.ErrNotExist) {
			log.WithFields(map[string]any{"person_id": person.ID}).Debug("No media folder for person")
			continue
		} else if err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("Error syncing %s: %v", person, err))
			log.WithError(err).Errorf("Error syncing %s", person)
			continue
		}

		stats.FoldersScanned++
		if err := s.syncPerson(ctx, person, folder, opts, stats); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("Error syncing %s: %v", person, err))
			log.WithError(err).Errorf("Error syncing %s", person)
		}
	}

	log.WithFields(map[string]any{
		"folders_scanned":     stats.FoldersScanned,
		"files_seen":          stats.FilesSeen,
		"attachments_created": stats.AttachmentsCreated,
		"attachments_pruned":  stats.AttachmentsPruned,
		"files_skipped":       stats.FilesSkipped,
		"errors":              len(stats.Errors),
	}).Info("Attachment sync complete")

	return stats, nil
}

// syncPerson walks one person's folder recursively, creating a row per
// untracked file. File names are stored relative to the person's folder with
// forward slashes.
func (s *Syncer) syncPerson(ctx context.Context, person *models.Person, folder string, opts Options, stats *Stats) error {
	// present records every regular file, skipped ones included, so prune
	// never removes a row whose file is still on disk.
	present := map[string]bool{}

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		fileName := filepath.ToSlash(rel)
		present[fileName] = true

		if shouldSkipFile(d.Name()) {
			stats.FilesSkipped++
			return nil
		}
		stats.FilesSeen++

		existing, err := s.store.FindAttachment(ctx, opts.TreeID, person.ID, fileName)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		stats.AttachmentsCreated++
		if opts.DryRun {
			return nil
		}
		_, err = s.store.CreateAttachment(ctx, opts.TreeID, models.CreateAttachmentRequest{
			PersonID: person.ID,
			FileName: fileName,
			FileType: models.FileTypeForName(d.Name()),
		})
		return err
	})
	if err != nil {
		return err
	}

	if !opts.Prune {
		return nil
	}
	return s.prunePerson(ctx, person, present, opts, stats)
}

func (s *Syncer) prunePerson(ctx context.Context, person *models.Person, present map[string]bool, opts Options, stats *Stats) error {
	rows, err := s.store.ListAttachments(ctx, opts.TreeID, person.ID)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if present[row.FileName] {
			continue
		}
		stats.AttachmentsPruned++
		if opts.DryRun {
			continue
		}
		if err := s.store.DeleteAttachment(ctx, opts.TreeID, row.ID); err != nil {
			return err
		}
	}
	return nil
}
