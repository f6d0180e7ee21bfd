package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"rag-chat-client/api"
	"rag-chat-client/chat"
	"rag-chat-client/utils"
)

var errUsage = errors.New("usage: rag-chat-client [sessions [query] | export <id> [file] | import <file> | status]")

// cli runs the headless commands against the same controllers the GUI uses
type cli struct {
	client *api.Client
	config *utils.Config
	logger *utils.Logger
	out    io.Writer

	sessions *chat.SessionStore
}

func newCLI(client *api.Client, config *utils.Config, logger *utils.Logger, out io.Writer) *cli {
	return &cli{
		client:   client,
		config:   config,
		logger:   logger,
		out:      out,
		sessions: chat.NewSessionStore(client, nil, nil, logger),
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "sessions":
		return c.listSessions(ctx, strings.Join(args[1:], " "))
	case "export":
		if len(args) < 2 {
			return errUsage
		}
		file := ""
		if len(args) > 2 {
			file = args[2]
		}
		return c.export(ctx, args[1], file)
	case "import":
		if len(args) < 2 {
			return errUsage
		}
		return c.importFile(ctx, args[1])
	case "status":
		return c.status(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func (c *cli) listSessions(ctx context.Context, query string) error {
	index, err := c.sessions.Refresh(ctx)
	if err != nil {
		return err
	}

	result := chat.FilterSessions(index, query)
	if result.NoResults != "" {
		color.New(color.FgYellow).Fprintln(c.out, result.NoResults)
		return nil
	}
	if len(result.Sessions) == 0 {
		color.New(color.FgYellow).Fprintln(c.out, "No sessions yet")
		return nil
	}

	// the table is laid out uncolored, then the header line is styled
	var table bytes.Buffer
	w := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMESSAGES\tTITLE")
	for _, s := range result.Sessions {
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.ID, s.MessageCount, s.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	header, rows, _ := strings.Cut(table.String(), "\n")
	color.New(color.Bold).Fprintln(c.out, header)
	_, err = io.WriteString(c.out, rows)
	return err
}

// export writes a bundle; a .md target gets the Markdown transcript, anything else JSON
func (c *cli) export(ctx context.Context, id, file string) error {
	bundle, err := c.sessions.Export(ctx, id)
	if err != nil {
		return err
	}

	title := id
	if _, err := c.sessions.Refresh(ctx); err == nil {
		if s, ok := c.sessions.Find(id); ok && s.Title != "" {
			title = s.Title
		}
	}

	format := utils.FormatJSON
	if strings.EqualFold(filepath.Ext(file), ".md") {
		format = utils.FormatMarkdown
	}
	if file == "" {
		dir, err := c.config.GetDefaultExportPath()
		if err != nil {
			return err
		}
		file = filepath.Join(dir, utils.GenerateExportFilename(title, format))
	}

	if format == utils.FormatMarkdown {
		err = utils.WriteBundleMarkdown(title, bundle, file)
	} else {
		err = utils.WriteBundleJSON(bundle, file)
	}
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(c.out, "Exported %s (%d messages) to %s\n", id, len(bundle.History), file)
	return nil
}

func (c *cli) importFile(ctx context.Context, file string) error {
	bundle, err := utils.ReadBundle(file)
	if err != nil {
		return err
	}
	id, err := c.sessions.Import(ctx, bundle)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.out, "Imported %d messages as session %s\n", len(bundle.History), id)
	return nil
}

func (c *cli) status(ctx context.Context) error {
	settings := chat.NewSettingsController(c.client, nil, c.logger, 0)
	kbs := chat.NewKnowledgeBaseManager(c.client, nil, c.logger)

	fmt.Fprintf(c.out, "Server: %s\n", c.client.BaseURL())

	features := settings.Features(ctx)
	printFeature(c.out, "RAG", features.RAG)
	printFeature(c.out, "Web search", features.WebSearch)

	if s, err := settings.Load(ctx); err == nil {
		fmt.Fprintf(c.out, "Model: %s (temperature %s, max tokens %d)\n", s.Model, chat.FormatTemperature(s.Temperature), s.MaxTokens)
	} else {
		color.New(color.FgRed).Fprintf(c.out, "Settings: %s\n", chat.UserMessage("load settings", err))
	}

	list, err := kbs.List(ctx)
	if err != nil {
		color.New(color.FgRed).Fprintf(c.out, "Knowledge bases: %s\n", chat.UserMessage("list knowledge bases", err))
		return nil
	}
	fmt.Fprintf(c.out, "Knowledge bases (%d):\n", len(list))
	for _, kb := range list {
		fmt.Fprintf(c.out, "  %s\n", chat.KnowledgeBaseLabel(kb))
	}
	return nil
}

func printFeature(out io.Writer, name string, available bool) {
	if available {
		color.New(color.FgGreen).Fprintf(out, "%s: available\n", name)
		return
	}
	color.New(color.FgRed).Fprintf(out, "%s: unavailable\n", name)
}
