package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/modq-io/modq/internal/archive"
	"github.com/modq-io/modq/internal/config"
	"github.com/modq-io/modq/internal/dataset"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "health":
		cmdHealth()
	case "counts":
		cmdCounts()
	case "tickets":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: modqctl tickets <list|show|messages|close|remove>")
			os.Exit(1)
		}
		switch os.Args[2] {
		case "list":
			cmdTicketsList(os.Args[3:])
		case "show":
			cmdTicketsShow(requireID("tickets show"))
		case "messages":
			cmdTicketsMessages(requireID("tickets messages"))
		case "close":
			cmdTicketsMutate(requireID("tickets close"), http.MethodPut)
		case "remove":
			cmdTicketsMutate(requireID("tickets remove"), http.MethodDelete)
		default:
			fmt.Fprintf(os.Stderr, "unknown tickets subcommand: %s\n", os.Args[2])
			os.Exit(1)
		}
	case "messages":
		if len(os.Args) < 3 || os.Args[2] != "show" {
			fmt.Fprintln(os.Stderr, "usage: modqctl messages show <id>")
			os.Exit(1)
		}
		cmdMessagesShow(requireID("messages show"))
	case "archive":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "usage: modqctl archive <dataset.json> <out.db>")
			os.Exit(1)
		}
		cmdArchive(os.Args[2], os.Args[3])
	case "config":
		if len(os.Args) < 4 || os.Args[2] != "validate" {
			fmt.Fprintln(os.Stderr, "usage: modqctl config validate <path>")
			os.Exit(1)
		}
		cmdConfigValidate(os.Args[3])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func requireID(usage string) string {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "usage: modqctl %s <id>\n", usage)
		os.Exit(1)
	}
	return os.Args[3]
}

// --- Commands ---

func cmdHealth() {
	body, err := apiDo(http.MethodGet, "/healthz")
	exitOnErr(err)
	fmt.Println(string(body))
}

func cmdCounts() {
	body, err := apiDo(http.MethodGet, "/api/v1/tickets/counts")
	exitOnErr(err)
	var counts map[string]int
	json.Unmarshal(body, &counts)
	for status, n := range counts {
		fmt.Printf("%-10s %d\n", status, n)
	}
}

func cmdTicketsList(args []string) {
	fs := flag.NewFlagSet("tickets list", flag.ExitOnError)
	page := fs.Int("page", 0, "Zero-based page index")
	pageSize := fs.Int("page-size", 20, "Tickets per page")
	author := fs.String("author", "", "Filter by author name substring")
	content := fs.String("content", "", "Filter by message content substring")
	status := fs.String("status", "", "Filter by status (comma-separated: open,closed,removed)")
	fs.Parse(args)

	query := fmt.Sprintf("?page=%d&page_size=%d", *page, *pageSize)
	if *author != "" {
		query += "&author=" + url.QueryEscape(*author)
	}
	if *content != "" {
		query += "&msg_content=" + url.QueryEscape(*content)
	}
	if *status != "" {
		query += "&status=" + url.QueryEscape(*status)
	}

	body, err := apiDo(http.MethodGet, "/api/v1/tickets"+query)
	exitOnErr(err)

	var out struct {
		Total   int `json:"total"`
		Tickets []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Msg    *struct {
				Author struct {
					Name string `json:"name"`
				} `json:"author"`
				Content string `json:"content"`
			} `json:"msg"`
		} `json:"tickets"`
	}
	json.Unmarshal(body, &out)

	for _, t := range out.Tickets {
		name, preview := "-", "-"
		if t.Msg != nil {
			name = t.Msg.Author.Name
			preview = strings.ReplaceAll(t.Msg.Content, "\n", " ")
			if len(preview) > 60 {
				preview = preview[:57] + "..."
			}
		}
		fmt.Printf("%-24s %-8s %-20s %s\n", t.ID, t.Status, name, preview)
	}
	fmt.Printf("%d matched\n", out.Total)
}

func cmdTicketsShow(id string) {
	body, err := apiDo(http.MethodGet, "/api/v1/tickets/"+id)
	exitOnErr(err)
	fmt.Println(prettyJSON(body))
}

func cmdTicketsMessages(id string) {
	body, err := apiDo(http.MethodGet, "/api/v1/tickets/"+id+"/messages")
	exitOnErr(err)
	fmt.Println(prettyJSON(body))
}

func cmdTicketsMutate(id, method string) {
	body, err := apiDo(method, "/api/v1/tickets/"+id)
	exitOnErr(err)
	fmt.Println(prettyJSON(body))
}

func cmdMessagesShow(id string) {
	body, err := apiDo(http.MethodGet, "/api/v1/messages/"+id)
	exitOnErr(err)
	fmt.Println(prettyJSON(body))
}

func cmdArchive(datasetPath, outPath string) {
	data, err := dataset.Load(datasetPath)
	exitOnErr(err)
	exitOnErr(archive.Export(outPath, data))
	fmt.Printf("archived %d tickets and %d messages to %s\n", len(data.Tickets), len(data.Messages), outPath)
}

func cmdConfigValidate(path string) {
	if _, err := config.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("config is valid")
}

// --- Helpers ---

func apiDo(method, path string) ([]byte, error) {
	base := envOr("MODQ_API_URL", "http://localhost:5001")

	req, err := http.NewRequest(method, base+path, nil)
	if err != nil {
		return nil, err
	}
	if key := os.Getenv("MODQ_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func prettyJSON(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	return string(out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("modqctl - moderation dashboard CLI")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  health                       Check daemon health")
	fmt.Println("  counts                       Ticket counts per status")
	fmt.Println("  tickets list                 List tickets (--page, --page-size, --author, --content, --status)")
	fmt.Println("  tickets show <id>            Show ticket details")
	fmt.Println("  tickets messages <id>        Show a ticket's context messages")
	fmt.Println("  tickets close <id>           Close a ticket")
	fmt.Println("  tickets remove <id>          Remove a ticket")
	fmt.Println("  messages show <id>           Show a message")
	fmt.Println("  archive <dataset.json> <db>  Export a dataset snapshot to SQLite")
	fmt.Println("  config validate <path>       Validate a config file")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  MODQ_API_URL  Daemon URL (default: http://localhost:5001)")
	fmt.Println("  MODQ_API_KEY  API key for authentication")
}
