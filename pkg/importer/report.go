package importer

import (
	"fmt"
	"io"
	"strings"
)

// Stats are the counters accumulated over one import run. Created counters
// only move when a row is actually (or, on a pretend run, would be) created,
// so a clean reimport reports zeroes across the board.
type Stats struct {
	IndividualsCreated   int      `json:"individuals_created"`
	IndividualsUpdated   int      `json:"individuals_updated"`
	NamesCreated         int      `json:"names_created"`
	NamesLinked          int      `json:"names_linked"`
	EventsCreated        int      `json:"events_created"`
	RelationshipsCreated int      `json:"relationships_created"`
	Errors               []string `json:"errors,omitempty"`
}

// Report is the outcome of one import run.
type Report struct {
	Stats   Stats `json:"stats"`
	Pretend bool  `json:"pretend"`
}

// Print writes the human-readable run summary.
func (r *Report) Print(w io.Writer) {
	divider := strings.Repeat("=", 50)

	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintln(w, "IMPORT SUMMARY")
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "Individuals created: %d\n", r.Stats.IndividualsCreated)
	fmt.Fprintf(w, "Individuals updated: %d\n", r.Stats.IndividualsUpdated)
	fmt.Fprintf(w, "Names created: %d\n", r.Stats.NamesCreated)
	fmt.Fprintf(w, "Names linked: %d\n", r.Stats.NamesLinked)
	fmt.Fprintf(w, "Events created: %d\n", r.Stats.EventsCreated)
	fmt.Fprintf(w, "Relationships created: %d\n", r.Stats.RelationshipsCreated)

	if len(r.Stats.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(r.Stats.Errors))
		for _, msg := range r.Stats.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}

	if r.Pretend {
		fmt.Fprintln(w, "\nThis was a pretend run. No changes were made to the database.")
		fmt.Fprintln(w, "Use --no-pretend to actually import the data.")
	}
}
