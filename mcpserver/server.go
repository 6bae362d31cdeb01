package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/browserker/locate/browserk"
	"gitlab.com/browserker/locate/browserk/navi"
	"gitlab.com/browserker/locate/scanner"
	"gitlab.com/browserker/locate/scanner/fetch"
)

// ToolName of the locate tool
const ToolName = "browserker_locate"

// MCPServer exposes the locator runner as an MCP tool over SSE
type MCPServer struct {
	host      string
	port      int
	cfg       *browserk.Config
	opener    scanner.Opener
	mcpServer *server.MCPServer
}

// New server, cfg supplies everything but the locators and first flag
// which come from each request.
func New(host string, port int, cfg *browserk.Config, opener scanner.Opener) *MCPServer {
	return &MCPServer{
		host:   host,
		port:   port,
		cfg:    cfg,
		opener: opener,
	}
}

// Init registers the locate tool
func (s *MCPServer) Init() {
	mcpServer := server.NewMCPServer(
		"browserker-locate",
		"1.0.0",
		server.WithLogging(),
		server.WithRecovery(),
	)

	locateTool := mcp.NewTool(ToolName,
		mcp.WithDescription("Find elements in a page with an ordered list of locators. The first locator that matches anything wins."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the page to search, file paths only when the server allows them"),
		),
		mcp.WithString("locators",
			mcp.Required(),
			mcp.Description("strategy=query entries, one per line, tried in order. Strategies: id, name, css, xpath, tag, class, link, partiallink"),
		),
		mcp.WithBoolean("first",
			mcp.Description("Only return the first element, reporting an error when nothing matches"),
		),
	)

	mcpServer.AddTool(locateTool, s.HandleLocate)
	s.mcpServer = mcpServer
}

// Start serving, blocks until the server stops
func (s *MCPServer) Start() error {
	if s.mcpServer == nil {
		s.Init()
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	log.Info().Str("addr", addr).Msg("starting mcp server")
	return server.NewSSEServer(s.mcpServer).Start(addr)
}

// HandleLocate runs the tool request
func (s *MCPServer) HandleLocate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, ok := request.Params.Arguments["url"].(string)
	if !ok || target == "" {
		return mcp.NewToolResultError("missing or invalid url"), nil
	}
	if fetch.IsFile(target) && !s.cfg.AllowFiles {
		log.Ctx(ctx).Warn().Str("url", target).Msg("refusing local file target")
		return mcp.NewToolResultError("local files are not allowed, only http and https urls"), nil
	}

	list, _ := request.Params.Arguments["locators"].(string)
	locators := navi.SplitLocators(list)
	if len(locators) == 0 {
		return mcp.NewToolResultError("missing locators"), nil
	}

	cfg := *s.cfg
	cfg.Locators = locators
	cfg.First, _ = request.Params.Arguments["first"].(bool)

	log.Ctx(ctx).Info().Str("url", target).Strs("locators", locators).Bool("first", cfg.First).Msg("locate request")

	runner, err := scanner.New(&cfg, s.opener)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := runner.Run(ctx, []string{target})
	if err != nil {
		return mcp.NewToolResultError(errors.Wrap(err, "locate failed").Error()), nil
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("error converting results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
