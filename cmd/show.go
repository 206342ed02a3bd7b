package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cohortlab/cohort-cli/internal/config"
	"github.com/cohortlab/cohort-cli/internal/model"
	"github.com/cohortlab/cohort-cli/internal/store"
)

var showCmd = &cobra.Command{
	Use:   "show <movie_id>",
	Short: "Show the rating and crew stored for one movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		movieID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("show: invalid movie id %q", args[0])
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, config.ModeStore)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		attrs, err := loadAttributes(ctx, st, movieID)
		if err != nil {
			return err
		}
		writeAttributes(os.Stdout, attrs)
		return nil
	},
}

// movieAttributes holds the attribute rows stored for one movie. A nil
// field has not been ingested.
type movieAttributes struct {
	MovieID  int64             `json:"movie_id"`
	Rating   *model.Rating     `json:"rating,omitempty"`
	Director *model.CrewRecord `json:"director,omitempty"`
	Composer *model.CrewRecord `json:"composer,omitempty"`
}

func (a *movieAttributes) empty() bool {
	return a.Rating == nil && a.Director == nil && a.Composer == nil
}

func loadAttributes(ctx context.Context, st store.Store, movieID int64) (*movieAttributes, error) {
	attrs := &movieAttributes{MovieID: movieID}

	rating, err := st.GetRating(ctx, movieID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, eris.Wrapf(err, "show: rating for %d", movieID)
	}
	attrs.Rating = rating

	for _, role := range []model.RoleKind{model.RoleDirector, model.RoleComposer} {
		rec, err := st.GetCrew(ctx, role, movieID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, eris.Wrapf(err, "show: %s for %d", role, movieID)
		}
		if role == model.RoleDirector {
			attrs.Director = rec
		} else {
			attrs.Composer = rec
		}
	}
	return attrs, nil
}

func writeAttributes(w io.Writer, a *movieAttributes) {
	if a.empty() {
		_, _ = fmt.Fprintf(w, "No attributes stored for movie %d.\n", a.MovieID)
		return
	}

	tt := newTextTable(textCol("Attribute"), textCol("Value"), textCol("Detail"))
	if a.Rating != nil {
		detail := ""
		if a.Rating.Dubious {
			detail = "dubious"
		}
		tt.addRow("rating", strconv.Itoa(a.Rating.Score), detail)
	}
	for _, rec := range []*model.CrewRecord{a.Director, a.Composer} {
		if rec != nil {
			tt.addRow(string(rec.Role), rec.PersonName, rec.Job+", "+rec.Gender.String())
		}
	}
	_, _ = fmt.Fprintln(w, tt)
}

func init() {
	rootCmd.AddCommand(showCmd)
}
