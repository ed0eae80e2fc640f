package main

import (
	"fmt"
	"os"

	"github.com/db47h/ways"
	"github.com/db47h/ways/emit"
)

type translateCmd struct {
	Emit     string `long:"emit" choice:"go" choice:"json" choice:"binary" default:"json" description:"output format"`
	Manifest string `long:"manifest" description:"read a TOML manifest bundle instead of stdin"`
	Pkg      string `long:"pkg" default:"lex" description:"package name for --emit go"`
}

func (c *translateCmd) Execute(args []string) error {
	var opts []ways.Option
	if c.Manifest != "" {
		opts = append(opts, ways.WithManifest(c.Manifest))
	}

	model, diags, _, err := ways.Translate(os.Stdin, opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, diags.Render(100))
		os.Exit(1)
	}
	if len(diags.Warnings()) > 0 {
		fmt.Fprintln(os.Stderr, diags.Render(100))
	}

	switch c.Emit {
	case "go":
		return emit.Go(os.Stdout, model, c.Pkg)
	case "binary":
		data, err := emit.Binary(model)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	default:
		data, err := emit.JSON(model)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
}
