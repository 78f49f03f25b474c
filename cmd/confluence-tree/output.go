/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/toothbrush/confluence-tree/confluence"
	"github.com/toothbrush/confluence-tree/operation"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputTree = "tree"
)

func checkOutputFormat(format string) error {
	switch format {
	case outputJSON, outputYAML, outputTree:
		return nil
	}
	return fmt.Errorf("confluence-tree: unknown output format %q (want %s, %s or %s)", format, outputJSON, outputYAML, outputTree)
}

// writeRecords prints records in the chosen format: JSON Lines, a YAML document stream, or an
// indented outline.
func writeRecords(w io.Writer, format string, records []operation.Record) error {
	switch format {
	case outputYAML:
		return writeYAML(w, records)
	case outputTree:
		return writeTree(w, records)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("confluence-tree: couldn't encode record: %w", err)
		}
	}
	return nil
}

// writeYAML goes through JSON so the field names match the JSON output exactly.  Decoding into a
// yaml.Node keeps the key order.
func writeYAML(w io.Writer, records []operation.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("confluence-tree: couldn't encode record: %w", err)
		}

		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("confluence-tree: couldn't convert record to YAML: %w", err)
		}
		blockStyle(&doc)

		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("confluence-tree: couldn't encode record: %w", err)
		}
	}

	return enc.Close()
}

// blockStyle undoes the flow style a node picks up from being parsed out of JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func writeTree(w io.Writer, records []operation.Record) error {
	for _, r := range records {
		var err error
		switch {
		case r.Err != "":
			_, err = fmt.Fprintf(w, "error (item %d): %s\n", r.Item, r.Err)
		case r.Space != nil:
			_, err = fmt.Fprintf(w, "%s: %s (%s)\n", r.Space.Key, r.Space.Name, r.Space.ID)
		case r.Node != nil:
			err = writeNode(w, r.Node, 0)
		}
		if err != nil {
			return fmt.Errorf("confluence-tree: couldn't write outline: %w", err)
		}
	}
	return nil
}

func writeNode(w io.Writer, n *confluence.ContentNode, indent int) error {
	marker := ""
	if n.Kind == confluence.KindFolder {
		marker = "/"
	}
	if _, err := fmt.Fprintf(w, "%s- %s%s (%s)\n", strings.Repeat("  ", indent), n.Title, marker, n.ID); err != nil {
		return err
	}

	for _, c := range n.Children {
		if err := writeNode(w, c, indent+1); err != nil {
			return err
		}
	}
	return nil
}
