// Package tools exposes the gateway's operations as a registry of named,
// JSON-argument tools. Registration is explicit so the full tool table is
// visible in one place and misnamed dispatches fail loudly.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/duckgate/duckgate/internal/query"
	"github.com/duckgate/duckgate/internal/query/duckdb"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Gateway is the slice of the database gateway the tools need.
type Gateway interface {
	Execute(ctx context.Context, sql string) (query.Result, error)
	ListTables(ctx context.Context) ([]string, error)
	Sample(ctx context.Context, table string, limit int) (query.Result, error)
	SchemaAndStats(ctx context.Context, table string) (query.TableSchema, error)
	IsValid(ctx context.Context, sql string) bool
	Import(ctx context.Context, format query.ImportFormat, table, source string, from duckdb.ImportSource) error
}

// Handler executes one tool call. Arguments arrive as the raw JSON object
// from the request body.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

type Tool struct {
	Name          string
	Description   string
	RequiredRoles []string
	Handler       Handler
}

// Descriptor is the listable surface of a tool, without its handler.
type Descriptor struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	RequiredRoles []string `json:"required_roles"`
}

type Registry struct {
	tools map[string]Tool
}

// New builds a registry pre-populated with the built-in tools bound to the
// given gateway.
func New(gateway Gateway) *Registry {
	registry := &Registry{tools: map[string]Tool{}}
	for _, tool := range builtinTools(gateway) {
		if err := registry.Register(tool); err != nil {
			panic(err)
		}
	}
	return registry
}

func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return errors.New("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q is already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) List() []Descriptor {
	descriptors := make([]Descriptor, 0, len(r.tools))
	for _, tool := range r.tools {
		descriptors = append(descriptors, Descriptor{
			Name:          tool.Name,
			Description:   tool.Description,
			RequiredRoles: tool.RequiredRoles,
		})
	}
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Name < descriptors[j].Name })
	return descriptors
}

func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return tool.Handler(ctx, args)
}

func decodeArgs(args json.RawMessage, into any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
