package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hangyu-feng/myplan-calendar/internal/extract"
	"github.com/hangyu-feng/myplan-calendar/internal/ics"
	"github.com/hangyu-feng/myplan-calendar/internal/render"
	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
	"github.com/hangyu-feng/myplan-calendar/internal/source"
)

// renderOutput is the json format: the built calendar plus skipped items.
type renderOutput struct {
	Calendar schedule.Calendar `json:"calendar"`
	Skipped  []extract.Skipped `json:"skipped,omitempty"`
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the calendar once and write it as json, svg or ics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check format prerequisites before anything touches --out.
			if err := a.checkFormat(format); err != nil {
				return err
			}

			cal, res, err := a.build(cmd.Context())
			if errors.Is(err, extract.ErrNoCourses) {
				fmt.Fprintln(cmd.ErrOrStderr(), "No courses found! Make sure the snapshot was taken on the 'Planned' or 'Schedule' page with course times visible.")
				return err
			}
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return a.write(cmd.OutOrStdout(), format, cal, res)
			}
			return a.writeFile(out, format, cal, res)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, svg or ics")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file ('-' for stdout)")
	return cmd
}

func (a *app) checkFormat(format string) error {
	switch format {
	case "json", "svg":
		return nil
	case "ics":
		if _, _, err := a.cfg.Term.Range(); err != nil {
			return fmt.Errorf("ics format needs a term: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json, svg or ics)", format)
	}
}

func (a *app) writeFile(path, format string, cal schedule.Calendar, res extract.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return a.write(f, format, cal, res)
}

func (a *app) write(w io.Writer, format string, cal schedule.Calendar, res extract.Result) error {
	switch format {
	case "svg":
		return render.Write(w, cal, render.DefaultOptions())
	case "ics":
		start, end, err := a.cfg.Term.Range()
		if err != nil {
			return err
		}
		return ics.Write(w, cal.Courses, ics.Options{
			Term: ics.Term{Start: start, End: end},
			Name: "MyPlan Schedule",
		})
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(renderOutput{Calendar: cal, Skipped: res.Skipped})
	}
}

func newSnapshotCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the configured source's plan items to a YAML file for offline use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.New(a.cfg.Source)
			if err != nil {
				return err
			}
			items, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := source.Save(out, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d plan items to %s\n", len(items), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "plan-items.yaml", "Snapshot file to write")
	return cmd
}
