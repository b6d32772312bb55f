package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	pluginrpc "mdash/internal/modules/plugin/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

type entryRow struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	ToolCallsBefore int    `json:"toolCallsBefore"`
	ToolCallsAfter  int    `json:"toolCallsAfter"`
	TerminalBefore  int    `json:"terminalBefore"`
	TerminalAfter   int    `json:"terminalAfter"`
	DebugTimeBefore int    `json:"debugTimeBefore"`
	DebugTimeAfter  int    `json:"debugTimeAfter"`
	TaskDescription string `json:"taskDescription"`
}

type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{
		Name:         "reference",
		Version:      "1.0.0",
		Capabilities: []string{"export", "analyze", "fullscreen_tty"},
	}, nil
}

func (s *server) ListCommands(_ context.Context, _ *pluginrpc.Empty) (*pluginrpc.ListCommandsResponse, error) {
	return &pluginrpc.ListCommandsResponse{Commands: []pluginrpc.CommandDescriptor{
		{ID: "csv", Title: "CSV Export", Description: "Renders the metric collection as CSV", Kind: "export", FileExt: "csv", TimeoutMS: 2000},
		{ID: "totals", Title: "Totals", Description: "Returns per-category before/after totals", Kind: "analyze", TimeoutMS: 2500},
		{ID: "tty-echo", Title: "TTY Echo", Description: "Prepares a tty command", Kind: "fullscreen_tty", TimeoutMS: 1500},
	}}, nil
}

func (s *server) Execute(_ context.Context, in *pluginrpc.ExecuteRequest) (*pluginrpc.ExecuteResponse, error) {
	entries := []entryRow{}
	if strings.TrimSpace(in.Context.CollectionJSON) != "" {
		if err := json.Unmarshal([]byte(in.Context.CollectionJSON), &entries); err != nil {
			return &pluginrpc.ExecuteResponse{Stderr: "malformed collection payload", ExitCode: 1}, nil
		}
	}
	switch in.CommandID {
	case "csv":
		var b strings.Builder
		b.WriteString("date,toolCallsBefore,toolCallsAfter,terminalBefore,terminalAfter,debugTimeBefore,debugTimeAfter,taskDescription\n")
		for _, e := range entries {
			fields := []string{
				e.Date,
				strconv.Itoa(e.ToolCallsBefore), strconv.Itoa(e.ToolCallsAfter),
				strconv.Itoa(e.TerminalBefore), strconv.Itoa(e.TerminalAfter),
				strconv.Itoa(e.DebugTimeBefore), strconv.Itoa(e.DebugTimeAfter),
				strconv.Quote(e.TaskDescription),
			}
			b.WriteString(strings.Join(fields, ","))
			b.WriteString("\n")
		}
		return &pluginrpc.ExecuteResponse{
			Stdout:     fmt.Sprintf("exported %d entries", len(entries)),
			OutputJSON: fmt.Sprintf(`{"rows":%d}`, len(entries)),
			Rendered:   b.String(),
			ExitCode:   0,
		}, nil
	case "totals":
		totals := map[string]int{}
		for _, e := range entries {
			totals["toolCallsBefore"] += e.ToolCallsBefore
			totals["toolCallsAfter"] += e.ToolCallsAfter
			totals["terminalBefore"] += e.TerminalBefore
			totals["terminalAfter"] += e.TerminalAfter
			totals["debugTimeBefore"] += e.DebugTimeBefore
			totals["debugTimeAfter"] += e.DebugTimeAfter
		}
		raw, _ := json.Marshal(totals)
		return &pluginrpc.ExecuteResponse{Stdout: "analysis complete", OutputJSON: string(raw), ExitCode: 0}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", in.CommandID)
	}
}

func (s *server) PrepareTTY(_ context.Context, in *pluginrpc.PrepareTTYRequest) (*pluginrpc.PrepareTTYResponse, error) {
	if in.CommandID != "tty-echo" {
		return nil, fmt.Errorf("unknown tty command: %s", in.CommandID)
	}
	return &pluginrpc.PrepareTTYResponse{
		Argv: []string{"/bin/sh", "-lc", "echo mdash-reference-tty"},
		Cwd:  in.Context.Cwd,
		Env: map[string]string{
			"MDASH_PLUGIN": "reference",
		},
	}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
