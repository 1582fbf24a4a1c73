package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// File is the canonical JSON format for graphs.
// The format is human-readable and round-trips without loss:
// read → render → write produces an identical document.
type File struct {
	Directed bool         `json:"directed"`
	Nodes    []NodeRecord `json:"nodes"`
	Edges    []EdgeRecord `json:"edges"`
}

// NodeRecord is one node in the serialized form.
type NodeRecord struct {
	ID string `json:"id"`
}

// EdgeRecord is one edge in the serialized form. Attrs carries layout hints
// such as the binary-tree side attribute.
type EdgeRecord struct {
	From  string            `json:"from"`
	To    string            `json:"to"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// MarshalGraph converts a Graph to JSON bytes.
// Nodes and edges are sorted by ID for deterministic output.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a Graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a Graph as JSON to an io.Writer.
func WriteGraph(g *Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded Graph.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*Graph, error) {
	return readGraphFrom(r)
}

// FromFile builds a Graph from its serialized form.
func FromFile(data File) (*Graph, error) {
	g := New(data.Directed)
	for _, n := range data.Nodes {
		if err := g.AddNode(n.ID); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.From, e.To, Attrs(e.Attrs)); err != nil {
			return nil, fmt.Errorf("edge %q -> %q: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ToFile converts a Graph to its serialized form with sorted nodes and edges.
func ToFile(g *Graph) File {
	out := File{Directed: g.IsDirected()}
	for _, id := range g.Nodes() {
		out.Nodes = append(out.Nodes, NodeRecord{ID: id})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, EdgeRecord{From: e.From, To: e.To, Attrs: e.Attrs})
	}
	return out
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *Graph, w io.Writer) error {
	out := ToFile(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*Graph, error) {
	var data File
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromFile(data)
}
