package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// defaultHistoryLimit is the number of entries --history shows without a
// value.
const defaultHistoryLimit = 20

type metaFlag struct {
	name     string
	short    string
	value    bool // takes a value
	optional bool // value only in --name=value form
}

// metaFlags are handled by the binary itself. They are only recognised in
// front of the first token that is not one of them; everything after that
// belongs to the manifest tree.
var metaFlags = []metaFlag{
	{name: "file", value: true},
	{name: "no-color"},
	{name: "no-pager"},
	{name: "completions", value: true},
	{name: "history", value: true, optional: true},
	{name: "failed"},
	{name: "set", value: true},
	{name: "unset", value: true},
	{name: "config"},
	{name: "interactive", short: "i"},
	{name: "version"},
}

func lookupMeta(tok string) (metaFlag, bool) {
	switch {
	case strings.HasPrefix(tok, "--"):
		name, _, _ := strings.Cut(tok[2:], "=")
		for _, f := range metaFlags {
			if f.name == name {
				return f, true
			}
		}
	case strings.HasPrefix(tok, "-") && len(tok) == 2:
		for _, f := range metaFlags {
			if f.short != "" && f.short == tok[1:] {
				return f, true
			}
		}
	}
	return metaFlag{}, false
}

// splitMeta separates the leading meta flags from the arguments meant for
// the tree.
func splitMeta(args []string) (meta, rest []string) {
	i := 0
	for i < len(args) {
		tok := args[i]
		f, ok := lookupMeta(tok)
		if !ok {
			break
		}
		meta = append(meta, tok)
		i++
		if f.value && !f.optional && !strings.Contains(tok, "=") && i < len(args) {
			meta = append(meta, args[i])
			i++
		}
	}
	return meta, args[i:]
}

type metaOptions struct {
	file        string
	noColor     bool
	noPager     bool
	completions string
	history     int
	showHistory bool
	failed      bool
	set         string
	unset       string
	listConfig  bool
	interactive bool
	version     bool
}

func parseMeta(meta []string) (metaOptions, error) {
	var o metaOptions

	fs := pflag.NewFlagSet("cmdtree", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.file, "file", "", "manifest file")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&o.noPager, "no-pager", false, "do not page long output")
	fs.StringVar(&o.completions, "completions", "", "print a completion script for SHELL")
	fs.IntVar(&o.history, "history", defaultHistoryLimit, "list recent invocations")
	fs.Lookup("history").NoOptDefVal = strconv.Itoa(defaultHistoryLimit)
	fs.BoolVar(&o.failed, "failed", false, "with --history, list failed invocations only")
	fs.StringVar(&o.set, "set", "", "set a configuration value (KEY=VALUE)")
	fs.StringVar(&o.unset, "unset", "", "restore the default of a configuration key")
	fs.BoolVar(&o.listConfig, "config", false, "list the configuration")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "browse the task overview")

	fs.BoolVar(&o.version, "version", false, "print the version")

	if err := fs.Parse(meta); err != nil {
		return metaOptions{}, err
	}
	o.showHistory = fs.Changed("history")
	return o, nil
}
