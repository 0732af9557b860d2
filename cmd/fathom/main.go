package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/kwhittle/fathom/agent"
	"github.com/kwhittle/fathom/config"
	"github.com/kwhittle/fathom/provider"
	"github.com/kwhittle/fathom/toolserver"
)

// defaultPrompt is used when none is supplied, matching the tool's original
// quick-start behavior.
const defaultPrompt = "which justfile recipes do we have?"

// folderList collects repeated -f flags in order.
type folderList []string

func (f *folderList) String() string {
	return strings.Join(*f, ", ")
}

func (f *folderList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	var folders folderList
	providerFlag := flag.String("m", "", "Model provider: ollama, claude, gemini, or bedrock")
	flag.Var(&folders, "f", "Folder path to analyze (repeatable)")
	promptFlag := flag.String("p", "", "Prompt to run against the agent")
	serversFlag := flag.String("t", "", "Tool servers to attach, by id or number, comma-separated")
	followUpFlag := flag.Bool("c", false, "Enable follow-up questions after the initial response")
	interactiveFlag := flag.Bool("i", false, "Run in interactive mode")
	listFlag := flag.Bool("list-servers", false, "List available tool servers and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		os.Exit(1)
	}

	registry := toolserver.NewRegistry(extraServers(cfg)...)

	if *listFlag {
		printServers(os.Stdout, registry)
		return
	}

	// An interrupt anywhere ends the conversation cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reader := bufio.NewReader(os.Stdin)
	interactive := *interactiveFlag || (len(folders) == 0 && *promptFlag == "" && *providerFlag == "")

	paths := []string(folders)
	prompt := *promptFlag
	followUp := *followUpFlag
	var kind provider.Kind
	var selected []toolserver.Descriptor

	if interactive {
		fmt.Println("Fathom folder analyzer")
		fmt.Println()

		if *providerFlag != "" {
			kind, err = provider.ParseKind(*providerFlag)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
		} else {
			kind = chooseProvider(reader)
		}

		if len(paths) == 0 {
			paths = collectFolders(reader)
		}
		if len(paths) == 0 {
			fmt.Fprintln(os.Stderr, "No folders provided. Exiting.")
			os.Exit(1)
		}

		if prompt == "" {
			prompt = choosePrompt(reader)
		}
		if !followUp {
			followUp = confirmFollowUp(reader)
		}

		selected, err = resolveServers(*serversFlag, true, reader, registry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if err := toolserver.CheckContextPaths(selected, paths); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	} else {
		if *providerFlag == "" {
			*providerFlag = string(provider.KindOllama)
		}
		kind, err = provider.ParseKind(*providerFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		selected, err = resolveServers(*serversFlag, false, nil, registry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if prompt == "" {
			prompt = defaultPrompt
		}
	}

	fmt.Printf("\nAnalyzing folders: %s\n", strings.Join(paths, ", "))
	fmt.Printf("Prompt: %s\n", prompt)
	fmt.Printf("Provider: %s\n", kind)
	if followUp {
		fmt.Println("Follow-up mode: enabled")
	}
	fmt.Println()

	sess, err := agent.New(ctx, cfg, agent.Params{
		Provider:     kind,
		Servers:      selected,
		ContextPaths: paths,
		FollowUp:     followUp,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring session: %v\n", err)
		os.Exit(1)
	}

	if err := sess.Run(ctx, prompt); err != nil {
		fmt.Fprintf(os.Stderr, "Session stopped with an error: %v\n", err)
		os.Exit(1)
	}
}

// resolveServers picks the session's tool servers. An explicit -t value is
// strict in every mode: any invalid token is an error rather than a silent
// fallback. Without the flag, the interactive wizard gets to be permissive
// and the scripted path falls back to the filesystem server.
func resolveServers(tokens string, interactive bool, reader *bufio.Reader, reg *toolserver.Registry) ([]toolserver.Descriptor, error) {
	if tokens != "" {
		return toolserver.Select(tokens, reg)
	}
	if interactive {
		return chooseServers(reader, reg), nil
	}
	return defaultServers(reg), nil
}

// defaultServers is the fallback selection: the filesystem server, which is
// what a folder-analysis session wants when nothing else is chosen.
func defaultServers(reg *toolserver.Registry) []toolserver.Descriptor {
	if d, ok := reg.Lookup("filesystem"); ok {
		return []toolserver.Descriptor{d}
	}
	return nil
}

// extraServers converts config-file tool server entries to descriptors,
// preserving file order.
func extraServers(cfg *config.Config) []toolserver.Descriptor {
	var out []toolserver.Descriptor
	for _, ts := range cfg.ToolServers {
		out = append(out, toolserver.Descriptor{
			ID:                   ts.ID,
			Name:                 ts.Name,
			Description:          ts.Description,
			Command:              ts.Command,
			Args:                 ts.Args,
			RequiresContextPaths: ts.RequiresContextPaths,
		})
	}
	return out
}

func printServers(out io.Writer, reg *toolserver.Registry) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tNAME\tNEEDS FOLDERS\tDESCRIPTION")
	for i, d := range reg.List() {
		needs := ""
		if d.RequiresContextPaths {
			needs = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, d.ID, d.Name, needs, d.Description)
	}
	w.Flush()
}
