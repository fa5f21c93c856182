package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"
)

// lockRetryDelay is how often a blocked add retries the file lock.
const lockRetryDelay = 100 * time.Millisecond

// addCommand creates the add command for appending records to a feed file.
func (c *CLI) addCommand() *cobra.Command {
	var (
		author string
		body   string
		parent string
		score  int
	)

	cmd := &cobra.Command{
		Use:   "add [feed file]",
		Short: "Append a record to a feed file",
		Long: `Append a record to a feed file.

The file is locked for the duration of the read-modify-write, so
concurrent adds from scripts or multiple shells do not lose records.
A fresh uuid is assigned as the record id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAdd(cmd.Context(), args[0], feed.Record{
				Parent: parent,
				Author: author,
				Body:   body,
				Score:  score,
			})
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "record author")
	cmd.Flags().StringVar(&body, "body", "", "record body")
	cmd.Flags().StringVar(&parent, "parent", "", "id of the record this replies to")
	cmd.Flags().IntVar(&score, "score", 0, "record score")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

// runAdd appends rec to the feed at path under an exclusive file lock.
func (c *CLI) runAdd(ctx context.Context, path string, rec feed.Record) error {
	if rec.Parent != "" {
		if err := apperrors.ValidateRecordID(rec.Parent); err != nil {
			return err
		}
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", path)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := feed.ReadFile(path)
	if err != nil {
		return err
	}

	if rec.Parent != "" && !hasRecord(f, rec.Parent) {
		return apperrors.New(apperrors.ErrCodeInvalidRecord, "parent id %q not in feed", rec.Parent)
	}

	rec.ID = uuid.New().String()
	if rec.Created.IsZero() {
		rec.Created = time.Now().UTC()
	}

	f.Records = append(f.Records, rec)
	if err := feed.WriteFile(f, path); err != nil {
		return err
	}

	printSuccess("Added record %s", rec.ID)
	if rec.Parent != "" {
		printDetail("reply to %s", rec.Parent)
	}
	printStats(f.Len(), 0, false)
	return nil
}

// hasRecord reports whether the feed contains a record with the given id.
func hasRecord(f *feed.Feed, id string) bool {
	for _, r := range f.Records {
		if r.ID == id {
			return true
		}
	}
	return false
}
