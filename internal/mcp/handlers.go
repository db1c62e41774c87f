package mcp

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/rolodex/internal/config"
	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
	"github.com/hpungsan/rolodex/internal/ops"
	"github.com/hpungsan/rolodex/internal/vcf"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// StoreRequest represents the arguments for contact_store.
type StoreRequest struct {
	Contact *contact.Contact `json:"contact"`
	Mode    string           `json:"mode,omitempty"`
}

// FetchRequest represents the arguments for contact_fetch.
type FetchRequest struct {
	ID             string `json:"id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ListRequest represents the arguments for contact_list.
type ListRequest struct {
	NamePrefix     string `json:"name_prefix,omitempty"`
	StarredOnly    bool   `json:"starred_only,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// DeleteRequest represents the arguments for contact_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// PurgeRequest represents the arguments for contact_purge.
type PurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// ImportRequest represents the arguments for contact_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// ExportRequest represents the arguments for contact_export.
type ExportRequest struct {
	Path           string   `json:"path,omitempty"`
	IDs            []string `json:"ids,omitempty"`
	IncludeDeleted bool     `json:"include_deleted,omitempty"`
	Inline         bool     `json:"inline,omitempty"`
	Notify         bool     `json:"notify,omitempty"`
	PhotoDir       string   `json:"photo_dir,omitempty"`
}

// ExportResponse is the contact_export result. VCard is set for inline exports.
type ExportResponse struct {
	*ops.ExportOutput
	VCard string `json:"vcard,omitempty"`
}

// Handler implementations

// HandleStore handles the contact_store tool call.
func (h *Handlers) HandleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Contact == nil {
		return errorResult(errors.NewInvalidRequest("contact is required")), nil
	}

	result, err := ops.Store(ctx, h.db, ops.StoreInput{
		Contact: *input.Contact,
		Mode:    ops.StoreMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the contact_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the contact_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		NamePrefix:     input.NamePrefix,
		StarredOnly:    input.StarredOnly,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the contact_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the contact_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the contact_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the contact_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	exportInput := ops.ExportInput{
		Path:           input.Path,
		IDs:            input.IDs,
		IncludeDeleted: input.IncludeDeleted,
		Notify:         input.Notify,
		Notifier:       clientNotifier(ctx),
		PhotoDir:       input.PhotoDir,
	}

	if input.Inline {
		if input.Path != "" {
			return errorResult(errors.NewInvalidRequest("path and inline are mutually exclusive")), nil
		}
		var buf bytes.Buffer
		result, err := ops.ExportTo(ctx, h.db, h.cfg, &buf, exportInput)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(ExportResponse{ExportOutput: result, VCard: buf.String()})
	}

	result, err := ops.Export(ctx, h.db, h.cfg, exportInput)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(ExportResponse{ExportOutput: result})
}

// clientNotifier forwards export-start notices to the connected client as
// log messages. It returns nil outside of a server session.
func clientNotifier(ctx context.Context) vcf.Notifier {
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return nil
	}
	return vcf.NotifierFunc(func(total int) {
		err := srv.SendNotificationToClient(ctx, "notifications/message", map[string]any{
			"level":  "info",
			"logger": "rolodex",
			"data":   fmt.Sprintf("exporting %d contacts", total),
		})
		if err != nil {
			slog.Debug("export notification not delivered", "error", err)
		}
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var rErr *errors.RolodexError
	if stderrors.As(err, &rErr) {
		msg := rErr.Message
		// Keep wrapper context such as "events[2]: ..." in the message.
		if outer := err.Error(); err != error(rErr) && strings.HasSuffix(outer, rErr.Error()) {
			msg = strings.TrimSuffix(outer, rErr.Error()) + rErr.Message
		}
		if rErr.Code == errors.ErrInternal {
			msg = "an internal error occurred"
		}
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": msg,
			"status":  rErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		slog.Error("unclassified tool error", "error", err)
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
