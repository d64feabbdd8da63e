package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for novelcheck resources.
	uriScheme = "novelcheck://"

	indexResourceURI = uriScheme + "index"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Index == nil {
		return
	}
	s.server.AddResource(&mcp.Resource{
		URI:         indexResourceURI,
		Name:        "index",
		Description: "Metadata of the published corpus index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleIndexResource returns the index metadata as JSON.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info, err := s.ports.Index.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index info: %w", toolError(err))
	}

	data, err := json.MarshalIndent(indexInfoOutput(info), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index info: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
