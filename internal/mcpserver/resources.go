package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "folio://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Every document in the default corpus with its title, tags and references",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{+id}",
		Name:        "document-content",
		Description: "Plain-text body of one document, addressed by its corpus-relative identifier",
		MIMEType:    "text/plain",
	}, s.handleDocumentResource)
}

type documentInfo struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags,omitempty"`
	References []string `json:"references,omitempty"`
	URI        string   `json:"uri"`
}

func (s *Server) handleDocumentsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	env, err := s.load(ctx, "")
	if err != nil {
		return nil, err
	}

	infos := make([]documentInfo, 0, env.Corpus.Len())
	for _, d := range env.Corpus.Documents {
		infos = append(infos, documentInfo{
			ID:         d.ID,
			Title:      d.Title,
			Tags:       d.Tags,
			References: d.References,
			URI:        uriScheme + "documents/" + d.ID,
		})
	}
	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := documentID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	env, err := s.load(ctx, "")
	if err != nil {
		return nil, err
	}
	d, ok := env.Corpus.Get(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     "# " + d.Title + "\n\n" + d.Body,
		}},
	}, nil
}

// documentID extracts the identifier from folio://documents/{id}.
func documentID(uri string) string {
	id, ok := strings.CutPrefix(uri, uriScheme+"documents/")
	if !ok {
		return ""
	}
	return strings.Trim(id, "/")
}
