package main

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"

	"github.com/db47h/ways"
)

type replCmd struct{}

// Execute runs an interactive shell for trying a single state's worth of
// `transition` declarations against sample input, without writing a
// file. Rules accumulate into one implicit state body; `:test STRING`
// shows the class id each byte of STRING resolves to against the model
// materialized so far; `:reset` clears the accumulated rules.
func (c *replCmd) Execute(args []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ways> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	var rules []string
	var model *ways.Model

	fmt.Fprintln(rl.Stderr(), "enter 'transition ...;' clauses one per line; ':test STRING' to classify bytes; ':reset' to clear; ':quit' to exit")

	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			continue
		case line == ":quit":
			return nil
		case line == ":reset":
			rules = nil
			model = nil
			continue
		case strings.HasPrefix(line, ":test "):
			sample := strings.TrimPrefix(line, ":test ")
			if model == nil {
				fmt.Fprintln(rl.Stderr(), "no rules materialized yet")
				continue
			}
			for i := 0; i < len(sample); i++ {
				fmt.Fprintf(rl.Stdout(), "%q -> class %d\n", sample[i], model.ClassMap[sample[i]])
			}
			continue
		default:
			rules = append(rules, line)
		}

		src := "state repl initial: " + strings.Join(rules, " ") + " ;"
		m, diags, _, err := ways.Translate(strings.NewReader(src))
		if err != nil {
			fmt.Fprintln(rl.Stderr(), diags.Render(100))
			rules = rules[:len(rules)-1]
			continue
		}
		model = m
		fmt.Fprintf(rl.Stdout(), "ok: %d classes\n", model.ClassCount)
	}
}
