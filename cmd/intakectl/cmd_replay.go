package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// kindContinue is a replay-only action that presses Continue
const kindContinue intake.EventKind = "continue"

// ReplayFile is a recorded sequence of wizard input
type ReplayFile struct {
	Submitter string        `yaml:"submitter"`
	Submit    bool          `yaml:"submit"`
	RecordIDs string        `yaml:"record_ids"`
	Events    []ReplayEntry `yaml:"events"`
}

// ReplayEntry is one event. Derived entries write read-only form fields;
// kind "continue" presses Continue.
type ReplayEntry struct {
	intake.Event `yaml:",inline"`
	Derived      bool `yaml:"derived,omitempty"`
}

// ReplayResult is what a replay leaves behind
type ReplayResult struct {
	Applied   int                       `json:"applied" yaml:"applied"`
	Blocked   []intake.ValidationReport `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	Reports   []intake.ValidationReport `json:"reports" yaml:"reports"`
	Submitted bool                      `json:"submitted" yaml:"submitted"`
	Snapshot  intake.SessionSnapshot    `json:"snapshot" yaml:"snapshot"`
}

var (
	replaySubmit    bool
	replaySubmitter string
)

var replayCmd = &cobra.Command{
	Use:   "replay <events.yaml>",
	Short: "Apply recorded events to a fresh session and print the result",
	Long: `Replays a YAML file of wizard events against a new session, then prints
the final snapshot with a validation report for every step. With --submit
the session is submitted from the final step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		file, err := decodeReplay(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if cmd.Flags().Changed("submit") {
			file.Submit = replaySubmit
		}
		if replaySubmitter != "" {
			file.Submitter = replaySubmitter
		}

		result, err := replay(file, time.Now())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), result)
	},
}

func init() {
	replayCmd.Flags().BoolVar(&replaySubmit, "submit", false, "submit the session after the last event")
	replayCmd.Flags().StringVar(&replaySubmitter, "submitter", "", "submitting user, overrides the file")
}

func decodeReplay(r io.Reader) (*ReplayFile, error) {
	var file ReplayFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid replay file: %w", err)
	}
	return &file, nil
}

// replay runs every entry against a new session. Addressing errors stop the
// replay and name the failing entry.
func replay(file *ReplayFile, now time.Time) (*ReplayResult, error) {
	var ids intake.IDGenerator
	switch file.RecordIDs {
	case "", "sequence":
		ids = intake.NewSequenceGenerator("row")
	case "uuid":
		ids = intake.UUIDGenerator{}
	default:
		return nil, fmt.Errorf("unknown record id strategy %q", file.RecordIDs)
	}
	session := intake.NewSession(intake.AgriCredSteps(now.Year()), ids)

	result := &ReplayResult{}
	for i, entry := range file.Events {
		var err error
		switch {
		case entry.Kind == kindContinue:
			if report, ok := session.Continue(); !ok {
				result.Blocked = append(result.Blocked, report)
			}
		case entry.Derived:
			err = session.SetDerivedField(entry.Step, entry.Section, entry.Field, entry.Value)
		default:
			err = session.Apply(entry.Event)
		}
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i+1, entry.Kind, err)
		}
		result.Applied++
	}

	if file.Submit {
		if file.Submitter == "" {
			return nil, errors.New("a submitter is required to submit")
		}
		if _, report, err := session.Submit(file.Submitter, now); err != nil {
			if errors.Is(err, intake.ErrValidationFailed) {
				result.Blocked = append(result.Blocked, report)
			} else {
				return nil, fmt.Errorf("submit: %w", err)
			}
		} else {
			result.Submitted = true
		}
	}

	for _, def := range session.Definitions() {
		report, err := session.ValidateStep(def.Name)
		if err != nil {
			return nil, err
		}
		result.Reports = append(result.Reports, report)
	}
	result.Snapshot = session.Snapshot()
	return result, nil
}
