// Package mcptools exposes one user's journal as MCP tools over stdio, so an
// assistant can read and write entries on the user's behalf.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/serr"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/model"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type journalService interface {
	Location() *time.Location
	SaveEntry(ctx context.Context, r service.SaveEntryRequest) (model.Entry, error)
	GetEntryByDate(ctx context.Context, uid string, date model.Date) (model.Entry, bool, error)
	ListEntries(ctx context.Context, r service.ListEntriesRequest) ([]model.Entry, error)
	Stats(ctx context.Context, uid string) (model.Stats, error)
	MonthlyMoodSummary(ctx context.Context, uid string, from, to model.Date) ([]model.MonthlyMoodCount, error)
}

type Server struct {
	srv journalService
	uid string
	mcp *server.MCPServer
}

// NewServer registers the journal tools for uid. Every call acts as that user.
func NewServer(srv journalService, uid, version string) *Server {
	s := &Server{
		srv: srv,
		uid: uid,
		mcp: server.NewMCPServer(
			"Lucid Journal",
			version,
			server.WithLogging(),
			server.WithRecovery(),
		),
	}
	s.register()
	return s
}

// Serve runs the stdio loop until stdin closes.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) register() {
	s.mcp.AddTool(mcp.NewTool("save_entry",
		mcp.WithDescription("Creates or replaces the journal entry for a day. The mood is inferred from the text when omitted."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the entry, YYYY-MM-DD. Must not be in the future.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry text.")),
		mcp.WithString("mood", mcp.Description("Mood name or emoji, e.g. Happy or 😔.")),
		mcp.WithString("tags", mcp.Description("Comma separated tag names to add.")),
	), s.saveEntry)

	s.mcp.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Returns the journal entry for a day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the entry, YYYY-MM-DD.")),
	), s.getEntry)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("Lists entries, newest first, filtered by mood, text, tag and date range."),
		mcp.WithString("mood", mcp.Description("Only entries with this mood.")),
		mcp.WithString("query", mcp.Description("Case-insensitive text to look for in the content.")),
		mcp.WithString("tag", mcp.Description("Only entries carrying this exact tag.")),
		mcp.WithString("from", mcp.Description("First day, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Last day, YYYY-MM-DD.")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("journal_stats",
		mcp.WithDescription("Returns streaks, the most common mood, the entry count and the average entry length."),
	), s.journalStats)

	s.mcp.AddTool(mcp.NewTool("monthly_summary",
		mcp.WithDescription("Counts entries per month and mood."),
		mcp.WithString("from", mcp.Description("First day, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Last day, YYYY-MM-DD.")),
	), s.monthlySummary)
}

func (s *Server) saveEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, res := s.dateArg(request, "date", true)
	if res != nil {
		return res, nil
	}
	content, ok := request.Params.Arguments["content"].(string)
	if !ok {
		return mcp.NewToolResultError("'content' parameter is required and must be a string."), nil
	}

	e, err := s.srv.SaveEntry(ctx, service.SaveEntryRequest{
		UID:     s.uid,
		Date:    date,
		Content: content,
		Mood:    stringArg(request, "mood"),
		Tags:    splitTags(stringArg(request, "tags")),
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(e)
}

func (s *Server) getEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, res := s.dateArg(request, "date", true)
	if res != nil {
		return res, nil
	}

	e, found, err := s.srv.GetEntryByDate(ctx, s.uid, date)
	if err != nil {
		return toolError(err), nil
	}
	if !found {
		return mcp.NewToolResultError("No entry for " + date.String() + "."), nil
	}
	return jsonResult(e)
}

func (s *Server) listEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, res := s.dateArg(request, "from", false)
	if res != nil {
		return res, nil
	}
	to, res := s.dateArg(request, "to", false)
	if res != nil {
		return res, nil
	}

	entries, err := s.srv.ListEntries(ctx, service.ListEntriesRequest{
		UID:   s.uid,
		Mood:  stringArg(request, "mood"),
		Query: stringArg(request, "query"),
		Tag:   stringArg(request, "tag"),
		From:  from,
		To:    to,
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(entries)
}

func (s *Server) journalStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.srv.Stats(ctx, s.uid)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(stats)
}

func (s *Server) monthlySummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, res := s.dateArg(request, "from", false)
	if res != nil {
		return res, nil
	}
	to, res := s.dateArg(request, "to", false)
	if res != nil {
		return res, nil
	}

	months, err := s.srv.MonthlyMoodSummary(ctx, s.uid, from, to)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(months)
}

// dateArg returns a non-nil result when the argument is missing or malformed.
func (s *Server) dateArg(request mcp.CallToolRequest, name string, required bool) (model.Date, *mcp.CallToolResult) {
	raw := stringArg(request, name)
	if raw == "" {
		if required {
			return model.Date{}, mcp.NewToolResultError("'" + name + "' parameter is required and must be a YYYY-MM-DD date.")
		}
		return model.Date{}, nil
	}

	d, err := model.ParseDate(raw, s.srv.Location())
	if err != nil {
		return model.Date{}, mcp.NewToolResultError("'" + name + "' must be a YYYY-MM-DD date.")
	}
	return d, nil
}

func stringArg(request mcp.CallToolRequest, name string) string {
	v, _ := request.Params.Arguments[name].(string)
	return strings.TrimSpace(v)
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// toolError keeps internal details out of the tool output, as the HTTP API does.
func toolError(err error) *mcp.CallToolResult {
	var se *serr.ServiceError
	if errors.As(err, &se) && se.StatusCode < 500 {
		return mcp.NewToolResultError(se.Msg)
	}

	slog.Error("mcp tool failed", "error", err)
	return mcp.NewToolResultError("internal error")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("failed to encode result"), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
