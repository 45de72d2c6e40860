package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/duckgate/duckgate/internal/auth"
	"github.com/duckgate/duckgate/internal/config"
	"github.com/duckgate/duckgate/internal/query"
	"github.com/duckgate/duckgate/internal/tools"
)

type toolListResponse struct {
	Tools []tools.Descriptor `json:"tools"`
}

type toolCallResponse struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

func handleListTools(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Registry == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TOOLS_NOT_CONFIGURED", "tool registry is not configured", false, nil)
		return
	}
	writeJSON(w, http.StatusOK, toolListResponse{Tools: deps.Registry.List()})
}

func handleDispatchTool(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Registry == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TOOLS_NOT_CONFIGURED", "tool registry is not configured", false, nil)
		return
	}

	name := r.PathValue("tool")
	tool, ok := deps.Registry.Lookup(name)
	if !ok {
		writeError(r.Context(), w, http.StatusNotFound, "UNKNOWN_TOOL", "unknown tool: "+name, false, nil)
		return
	}

	if cfg.Auth.Required {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			writeError(r.Context(), w, http.StatusUnauthorized, "UNAUTHORIZED", "identity is missing", false, nil)
			return
		}
		for _, role := range tool.RequiredRoles {
			if !identity.HasRole(role) {
				writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", "missing required role "+role, false, nil)
				return
			}
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_BODY", "failed to read request body", false, nil)
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", false, nil)
		return
	}

	result, err := deps.Registry.Dispatch(r.Context(), name, json.RawMessage(body))
	if err != nil {
		writeToolError(deps, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toolCallResponse{Tool: name, Result: result})
}

// writeToolError maps the gateway's error taxonomy onto the HTTP envelope.
// Timeouts are the only retryable failure.
func writeToolError(deps Dependencies, w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, query.ErrForbidden):
		writeError(ctx, w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
	case errors.Is(err, query.ErrTimeout):
		writeError(ctx, w, http.StatusGatewayTimeout, "QUERY_TIMEOUT", err.Error(), true, nil)
	case errors.Is(err, query.ErrUnknownTable):
		writeError(ctx, w, http.StatusNotFound, "UNKNOWN_TABLE", err.Error(), false, nil)
	case errors.Is(err, query.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, "FILE_NOT_FOUND", err.Error(), false, nil)
	case errors.Is(err, query.ErrUnsupportedFormat):
		writeError(ctx, w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error(), false, nil)
	case errors.Is(err, query.ErrInvalidIdentifier):
		writeError(ctx, w, http.StatusBadRequest, "INVALID_IDENTIFIER", err.Error(), false, nil)
	case errors.Is(err, tools.ErrInvalidArguments):
		writeError(ctx, w, http.StatusBadRequest, "INVALID_ARGUMENTS", err.Error(), false, nil)
	case errors.Is(err, tools.ErrUnknownTool):
		writeError(ctx, w, http.StatusNotFound, "UNKNOWN_TOOL", err.Error(), false, nil)
	case errors.Is(err, query.ErrClosed):
		writeError(ctx, w, http.StatusServiceUnavailable, "GATEWAY_CLOSED", err.Error(), false, nil)
	default:
		if deps.Logger != nil {
			deps.Logger.ErrorContext(ctx, "tool dispatch failed", "error", err)
		}
		writeError(ctx, w, http.StatusInternalServerError, "ENGINE_FAILURE", "tool execution failed", false, map[string]any{"details": err.Error()})
	}
}
