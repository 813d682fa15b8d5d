package mcp

import (
	"context"
	"encoding/json"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const preferencesURIPrefix = "aren://preferences/"

// registerResources publishes read-only views of the assistant's state:
// the capability catalog and per-device preferences.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"aren://capabilities",
			"Capability Catalog",
			mcplib.WithResourceDescription("The assistant's capabilities with their trigger keywords"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleCapabilitiesResource,
	)

	s.mcpServer.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			preferencesURIPrefix+"{device_id}",
			"Device Preferences",
			mcplib.WithTemplateDescription("Stored preferences for one device"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		s.handlePreferencesResource,
	)
}

// jsonResource wraps a JSON document in the single-content reply every
// resource here returns.
func jsonResource(uri, text string) []mcplib.ResourceContents {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		},
	}
}

func (s *Server) handleCapabilitiesResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Catalog == nil {
		return jsonResource(req.Params.URI, `{"error":"catalog not configured"}`), nil
	}

	type entry struct {
		Name         string   `json:"name"`
		Keywords     []string `json:"keywords"`
		RequiresArgs bool     `json:"requires_args"`
	}
	all := s.deps.Catalog.All()
	entries := make([]entry, 0, len(all))
	for _, c := range all {
		entries = append(entries, entry{
			Name:         c.Name,
			Keywords:     c.Keywords,
			RequiresArgs: c.RequiresArgs,
		})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

func (s *Server) handlePreferencesResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Contexts == nil {
		return jsonResource(req.Params.URI, `{"error":"context store not configured"}`), nil
	}
	device := strings.TrimPrefix(req.Params.URI, preferencesURIPrefix)
	if device == "" || strings.Contains(device, "/") {
		return jsonResource(req.Params.URI, `{"error":"invalid device id"}`), nil
	}
	prefs, err := s.deps.Contexts.Preferences(ctx, device)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, string(data)), nil
}
