// Package server provides the MCP server implementation for uncomment.
package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/seanhalberthal/uncomment/internal/logger"
	"github.com/seanhalberthal/uncomment/internal/metrics"
	"github.com/seanhalberthal/uncomment/internal/processor"
	"github.com/seanhalberthal/uncomment/internal/sourcefile"
	"github.com/seanhalberthal/uncomment/internal/types"
)

// proc holds the processor instance for tool handlers.
var proc *processor.Processor

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func Run(ctx context.Context, p *processor.Processor) error {
	proc = p

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "uncomment",
			Version: types.Version,
		},
		nil,
	)

	registerTools(server)

	logger.Slog().Info("starting MCP server on stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "uncomment_status",
		Description: "Get uncomment version, language count and result cache usage",
	}, handleStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "uncomment_languages",
		Description: "List the languages comments can be removed from, plus accepted alias ids",
	}, handleLanguages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "uncomment_strip",
		Description: "Remove comments from a code snippet and collapse the blank lines left behind",
	}, handleStrip)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "uncomment_strip_files",
		Description: "Remove comments from files or directories, optionally rewriting them in place",
	}, handleStripFiles)
}

// Tool input/output types

type statusInput struct{}

type StatusOutput struct {
	types.StatusResponse
}

type languagesInput struct{}

type LanguagesOutput struct {
	Languages []types.Language `json:"languages"`
	Aliases   []string         `json:"aliases"`
}

type stripInput struct {
	Code     string `json:"code" jsonschema:"description=Source code to remove comments from"`
	Language string `json:"language" jsonschema:"description=Language id such as python or rust"`
}

type StripOutput struct {
	types.StripResult
}

type stripFilesInput struct {
	Path      string `json:"path" jsonschema:"description=File or directory to process"`
	Language  string `json:"language" jsonschema:"description=Language id such as python or rust"`
	Recursive bool   `json:"recursive,omitempty" jsonschema:"description=Descend into subdirectories"`
	Ext       string `json:"ext,omitempty" jsonschema:"description=Comma-separated extension filter for directories, e.g. .go,.js"`
	Write     bool   `json:"write,omitempty" jsonschema:"description=Rewrite files in place instead of returning their contents"`
}

type StripFilesOutput struct {
	types.BatchResult
}

// Tool handlers

func handleStatus(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[statusInput]) (*mcp.CallToolResultFor[StatusOutput], error) {
	metrics.RecordToolCall("uncomment_status", "ok")
	return &mcp.CallToolResultFor[StatusOutput]{StructuredContent: StatusOutput{StatusResponse: proc.Status()}}, nil
}

func handleLanguages(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[languagesInput]) (*mcp.CallToolResultFor[LanguagesOutput], error) {
	metrics.RecordToolCall("uncomment_languages", "ok")
	out := LanguagesOutput{
		Languages: proc.Languages(),
		Aliases:   proc.Status().Aliases,
	}
	return &mcp.CallToolResultFor[LanguagesOutput]{StructuredContent: out}, nil
}

func handleStrip(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[stripInput]) (*mcp.CallToolResultFor[StripOutput], error) {
	input := params.Arguments

	result, err := proc.Process(types.StripRequest{Code: input.Code, Language: input.Language})
	if err != nil {
		metrics.RecordToolCall("uncomment_strip", "error")
		return &mcp.CallToolResultFor[StripOutput]{IsError: true}, err
	}

	metrics.RecordToolCall("uncomment_strip", "ok")
	return &mcp.CallToolResultFor[StripOutput]{StructuredContent: StripOutput{StripResult: *result}}, nil
}

func handleStripFiles(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[stripFilesInput]) (*mcp.CallToolResultFor[StripFilesOutput], error) {
	input := params.Arguments
	if input.Path == "" {
		metrics.RecordToolCall("uncomment_strip_files", "error")
		return &mcp.CallToolResultFor[StripFilesOutput]{IsError: true}, fmt.Errorf("path is required")
	}

	result, err := proc.StripFiles(ctx, processor.FileOptions{
		Paths:     []string{input.Path},
		Language:  input.Language,
		Recursive: input.Recursive,
		Exts:      sourcefile.ParseExtensions(input.Ext),
		Write:     input.Write,
	})
	if err != nil {
		metrics.RecordToolCall("uncomment_strip_files", "error")
		return &mcp.CallToolResultFor[StripFilesOutput]{IsError: true}, err
	}

	metrics.RecordToolCall("uncomment_strip_files", "ok")
	return &mcp.CallToolResultFor[StripFilesOutput]{StructuredContent: StripFilesOutput{BatchResult: *result}}, nil
}
