// Package cli provides the command-line interface for uncomment.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/seanhalberthal/uncomment/internal/processor"
	"github.com/seanhalberthal/uncomment/internal/sourcefile"
	"github.com/seanhalberthal/uncomment/internal/types"
)

const errorFormat = "Error: %v\n"

// exitFunc is the function used to exit the program. Override in tests.
var exitFunc = os.Exit

// stdin is where snippets are read from. Override in tests.
var stdin io.Reader = os.Stdin

// Run executes the CLI with the given processor and arguments.
func Run(ctx context.Context, proc *processor.Processor, args []string) {
	if len(args) == 0 {
		printUsage()
		exitFunc(1)
		return
	}

	switch args[0] {
	case "languages":
		runLanguages(proc, hasFlag(args[1:], "--json"))
	case "strip":
		opts, err := parseStripFlags(args[1:])
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, errorFormat, err)
			exitFunc(1)
			return
		}
		runStrip(ctx, proc, opts)
	case "status":
		printJSON(proc.Status())
	case "help", "--help", "-h":
		printUsage()
	default:
		_, _ = fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		exitFunc(1)
		return
	}
}

func printUsage() {
	fmt.Println(`uncomment - remove comments from source code

Usage:
  uncomment <command>               Run in CLI mode (default)
  uncomment --serve                 Serve the web form and JSON API
  uncomment --mcp                   Run as MCP server on stdio

Commands:
  languages [--json]                List supported languages
  strip --lang <id> [flags] [path...]
                                    Remove comments from files, or stdin
    --write, -w                     Rewrite files in place
    --recursive, -r                 Walk subdirectories
    --ext <.go,.js>                 Extension filter for directories
    --json                          Print JSON results
  status                            Show version and catalog summary`)
}

type stripOptions struct {
	Language  string
	Write     bool
	Recursive bool
	Exts      []string
	JSON      bool
	Paths     []string
}

var errMissingValue = errors.New("flag needs a value")

func parseStripFlags(args []string) (stripOptions, error) {
	var opts stripOptions

	for i := 0; i < len(args); i++ {
		arg := args[i]

		name, value, hasValue := strings.Cut(arg, "=")
		needValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s: %w", name, errMissingValue)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "--lang", "-l":
			v, err := needValue()
			if err != nil {
				return opts, err
			}
			opts.Language = v
		case "--ext":
			v, err := needValue()
			if err != nil {
				return opts, err
			}
			opts.Exts = append(opts.Exts, sourcefile.ParseExtensions(v)...)
		case "--write", "-w":
			opts.Write = true
		case "--recursive", "-r":
			opts.Recursive = true
		case "--json":
			opts.JSON = true
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return opts, fmt.Errorf("unknown flag: %s", arg)
			}
			opts.Paths = append(opts.Paths, arg)
		}
	}

	return opts, nil
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func runLanguages(proc *processor.Processor, asJSON bool) {
	langs := proc.Languages()
	if asJSON {
		printJSON(langs)
		return
	}

	fmt.Println(languageTable(langs))
	aliases := proc.Status().Aliases
	if len(aliases) > 0 {
		fmt.Println(formatLabel("Aliases") + " " + formatMuted(strings.Join(aliases, ", ")))
	}
}

func runStrip(ctx context.Context, proc *processor.Processor, opts stripOptions) {
	if opts.Language == "" {
		printStyledError("%s (use --lang)", capitalise(processor.ErrNoLanguageSelected.Error()))
		exitFunc(1)
		return
	}
	if !proc.Supports(opts.Language) {
		printStyledError("Unknown language %q. Accepted: %s", opts.Language, strings.Join(proc.IDs(), ", "))
		exitFunc(1)
		return
	}

	if len(opts.Paths) == 0 || (len(opts.Paths) == 1 && opts.Paths[0] == "-") {
		stripStdin(proc, opts)
		return
	}
	stripFiles(ctx, proc, opts)
}

func stripStdin(proc *processor.Processor, opts stripOptions) {
	if opts.Write {
		printStyledError("--write needs file arguments")
		exitFunc(1)
		return
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, errorFormat, err)
		exitFunc(1)
		return
	}

	res, err := proc.Process(types.StripRequest{Code: string(data), Language: opts.Language})
	if err != nil {
		printStyledError("%s", capitalise(err.Error()))
		exitFunc(1)
		return
	}

	if opts.JSON {
		printJSON(res)
		return
	}
	fmt.Print(res.Output)
	_, _ = fmt.Fprintln(os.Stderr, formatSuccess(res.Message))
}

func stripFiles(ctx context.Context, proc *processor.Processor, opts stripOptions) {
	stop := func() {}
	if !opts.JSON && (len(opts.Paths) > 1 || opts.Recursive) {
		stop = startSpinner("Removing comments...")
	}

	result, err := proc.StripFiles(ctx, processor.FileOptions{
		Paths:     opts.Paths,
		Language:  opts.Language,
		Recursive: opts.Recursive,
		Exts:      opts.Exts,
		Write:     opts.Write,
	})
	stop()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, errorFormat, err)
		exitFunc(1)
		return
	}

	if opts.JSON {
		printJSON(result)
	} else {
		printBatch(result, opts.Write)
	}

	if result.Failed > 0 {
		exitFunc(1)
	}
}

func printBatch(result *types.BatchResult, wrote bool) {
	if len(result.Files) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, formatWarning("No files matched"))
		return
	}

	multi := len(result.Files) > 1
	for _, f := range result.Files {
		if f.Error != "" {
			_, _ = fmt.Fprintln(os.Stderr, formatError(formatPath(f.Path)+": "+f.Error))
			continue
		}

		if !wrote {
			if multi {
				fmt.Println(formatHeader("==> " + f.Path + " <=="))
			}
			fmt.Print(f.Output)
			continue
		}

		status := formatMuted("unchanged")
		if f.Written {
			status = formatLines(f.OriginalLines, f.ResultLines)
		}
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", formatPath(f.Path), status)
	}

	if multi || wrote {
		_, _ = fmt.Fprintln(os.Stderr, formatDivider(40))
	}
	summary := fmt.Sprintf("%d of %d files changed", result.Changed, len(result.Files))
	if !wrote {
		summary = fmt.Sprintf("%d of %d files have comments", result.Changed, len(result.Files))
	}
	_, _ = fmt.Fprintln(os.Stderr, formatSuccess(summary))
}

// capitalise upper-cases the first byte of an ASCII message.
func capitalise(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}
