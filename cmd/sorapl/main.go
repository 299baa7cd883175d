package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sorakumo/prolog"
	"golang.org/x/crypto/ssh/terminal"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(files []string) error {
	i := prolog.New()
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if err := i.Consult(string(src)); err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
	}

	fd := int(os.Stdin.Fd())
	old, err := terminal.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() {
		_ = terminal.Restore(fd, old)
	}()

	t := terminal.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "?- ")

	for {
		line, err := t.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		query := strings.TrimSpace(line)
		switch query {
		case "":
			continue
		case "halt", "halt.":
			return nil
		}
		answer(t, i, query)
	}
}

func answer(t *terminal.Terminal, i *prolog.Interpreter, query string) {
	solutions, err := i.Solve(query)
	if err != nil {
		fmt.Fprintln(t, err)
		return
	}
	if len(solutions) == 0 {
		fmt.Fprintln(t, "false.")
		return
	}
	for _, sol := range solutions {
		if len(sol) == 0 {
			fmt.Fprintln(t, "true.")
			continue
		}
		names := make([]string, 0, len(sol))
		for name := range sol {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for j, name := range names {
			parts[j] = fmt.Sprintf("%s = %s", name, sol[name])
		}
		fmt.Fprintln(t, strings.Join(parts, ", "))
	}
}
