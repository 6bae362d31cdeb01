package mcpserver_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/browserker/locate/browserk"
	"gitlab.com/browserker/locate/browserk/navi"
	"gitlab.com/browserker/locate/mcpserver"
	"gitlab.com/browserker/locate/mock"
	"gitlab.com/browserker/locate/scanner"
)

func request(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = mcpserver.ToolName
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func testServer() *mcpserver.MCPServer {
	opener := mock.NewOpener().
		Add("http://example.com", mock.NewSearchContext().
			Add(navi.ByCSS(".login"), mock.MakeElement("form", "login")))
	s := mcpserver.New("localhost", 0, browserk.DefaultConfig(), opener)
	s.Init()
	return s
}

func TestHandleLocate(t *testing.T) {
	s := testServer()

	result, err := s.HandleLocate(context.Background(), request(map[string]interface{}{
		"url":      "http://example.com",
		"locators": "id=missing\ncss=.login",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var results []*scanner.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Ordered([By.Id: missing,By.CssSelector: .login])", results[0].Locator)
	require.Len(t, results[0].Elements, 1)
	assert.Equal(t, "form", results[0].Elements[0].Tag)
}

func TestHandleLocateFirstNotFound(t *testing.T) {
	s := testServer()

	result, err := s.HandleLocate(context.Background(), request(map[string]interface{}{
		"url":      "http://example.com",
		"locators": "id=missing",
		"first":    true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Cannot locate an element using Ordered([By.Id: missing])")
}

func TestHandleLocateBadArguments(t *testing.T) {
	s := testServer()

	for _, args := range []map[string]interface{}{
		{"locators": "id=x"},
		{"url": "http://example.com"},
		{"url": "http://example.com", "locators": " \n "},
		{"url": "http://example.com", "locators": "bogus=x"},
	} {
		result, err := s.HandleLocate(context.Background(), request(args))
		require.NoError(t, err)
		assert.True(t, result.IsError, "%v", args)
	}
}

func TestHandleLocateRefusesFiles(t *testing.T) {
	s := testServer()

	for _, target := range []string{"/etc/passwd", "testdata/page.html", "file:///etc/passwd"} {
		result, err := s.HandleLocate(context.Background(), request(map[string]interface{}{
			"url":      target,
			"locators": "tag=body",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError, target)
		assert.Contains(t, resultText(t, result), "local files are not allowed")
	}
}

func TestHandleLocateAllowFiles(t *testing.T) {
	opener := mock.NewOpener().
		Add("testdata/page.html", mock.NewSearchContext().
			Add(navi.ByTagName("body"), mock.MakeElement("body", "page")))
	cfg := browserk.DefaultConfig()
	cfg.AllowFiles = true
	s := mcpserver.New("localhost", 0, cfg, opener)
	s.Init()

	result, err := s.HandleLocate(context.Background(), request(map[string]interface{}{
		"url":      "testdata/page.html",
		"locators": "tag=body",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"tag": "body"`)
}
