package main

import (
	"context"
	"fmt"
	"os"

	"github.com/db47h/ways/internal/history"
)

type historyCmd struct {
	DB    string `long:"db" default:"wayslex-history.db" description:"path to the run history database"`
	Limit int    `long:"limit" default:"20" description:"maximum number of runs to list"`
}

func (c *historyCmd) Execute(args []string) error {
	store, err := history.Open(c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), c.Limit)
	if err != nil {
		return err
	}

	for _, r := range runs {
		status := "ok"
		if !r.OK {
			status = "FAILED: " + r.FirstDiagnostic
		}
		fmt.Fprintf(os.Stdout, "%s  %s  states=%d classes=%d  %s\n",
			r.StartedAt.Format("2006-01-02T15:04:05Z07:00"), r.ID, r.StateCount, r.ClassCount, status)
	}
	return nil
}
