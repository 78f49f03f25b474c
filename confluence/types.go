package confluence

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-get
type User struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	UserKey     string `json:"userKey"`
	AccountID   string `json:"accountId"`
	AccountType string `json:"accountType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// See https://developer.atlassian.com/cloud/confluence/rest/v2/api-group-space/#api-spaces-get.
type Space struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Kind is the content type Confluence reports in the "type" field of a child listing.  Only pages
// and folders make up the tree; attachments, comments, whiteboards etc. are dropped.
type Kind string

const (
	KindPage   Kind = "page"
	KindFolder Kind = "folder"
)

func (k Kind) IsContent() bool {
	return k == KindPage || k == KindFolder
}

// ContentNode is a page or folder in a space's content tree.
//
// Depth and Children are nil on anything fresh off the API.  The hierarchy builder stamps Depth
// first, then sets Children (possibly empty) once the node is resolved.
//
// Fields Confluence sends that we don't model are kept in Extra and written back out unchanged.
type ContentNode struct {
	ID         string    `json:"id"`
	Title      string    `json:"title,omitempty"`
	Kind       Kind      `json:"type,omitempty"`
	ParentID   string    `json:"parentId,omitempty"`
	ParentType string    `json:"parentType,omitempty"`
	SpaceID    string    `json:"spaceId,omitempty"`
	Position   *int      `json:"position,omitempty"`
	Status     string    `json:"status,omitempty"` // current, archived, deleted, trashed
	CreatedAt  Timestamp `json:"createdAt,omitempty"`
	AuthorID   string    `json:"authorId,omitempty"`
	Version    *Version  `json:"version,omitempty"`
	Links      *Links    `json:"_links,omitempty"`
	Body       *Body     `json:"body,omitempty"`

	Depth    *int           `json:"depth,omitempty"`
	Children []*ContentNode `json:"-"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Keys handled by the struct tags above, plus "children" which we always own.
var knownNodeFields = []string{
	"id", "title", "type", "parentId", "parentType", "spaceId", "position", "status", "createdAt",
	"authorId", "version", "_links", "body", "depth", "children",
}

type contentNode ContentNode

func (n *ContentNode) UnmarshalJSON(data []byte) error {
	var fields contentNode
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownNodeFields {
		delete(raw, key)
	}

	// Whatever the API said, traversal state starts out empty.
	fields.Depth = nil
	fields.Children = nil
	fields.Extra = nil
	if len(raw) > 0 {
		fields.Extra = raw
	}

	*n = ContentNode(fields)
	return nil
}

func (n ContentNode) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(contentNode(n))
	if err != nil {
		return nil, err
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	for key, value := range n.Extra {
		if _, ok := out[key]; !ok {
			out[key] = value
		}
	}

	if n.Children != nil {
		children, err := json.Marshal(n.Children)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't marshal children of %s: %w", n.ID, err)
		}
		out["children"] = children
	}

	return json.Marshal(out)
}

// Resolved reports whether the hierarchy builder has finished with this node.
func (n *ContentNode) Resolved() bool {
	return n.Children != nil
}

// Version defines the content version number
type Version struct {
	Number    int       `json:"number"`
	CreatedAt Timestamp `json:"createdAt,omitempty"`
	Message   string    `json:"message,omitempty"`
	MinorEdit bool      `json:"minorEdit,omitempty"`
	AuthorID  string    `json:"authorId,omitempty"`
}

type Links struct {
	WebUI  string `json:"webui,omitempty"`
	EditUI string `json:"editui,omitempty"`
	TinyUI string `json:"tinyui,omitempty"`
}

// Body holds the storage information, only present when a body-format was requested.
type Body struct {
	Storage        *Storage `json:"storage,omitempty"`
	AtlasDocFormat *Storage `json:"atlas_doc_format,omitempty"`
	View           *Storage `json:"view,omitempty"`
}

// Storage defines the storage information
type Storage struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// Timestamp keeps a createdAt value as Confluence sent it.  The API docs claim these are strings
// in "YYYY-MM-DDTHH:mm:ss.sssZ" format, but folders have been seen sending epoch millis.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("confluence: timestamp is neither string nor number: %s", data)
	}
	*t = Timestamp(n.String())
	return nil
}

// Time parses the timestamp, accepting RFC3339 or epoch milliseconds.
func (t Timestamp) Time() (time.Time, error) {
	if t == "" {
		return time.Time{}, fmt.Errorf("confluence: empty timestamp")
	}
	if ts, err := time.Parse(time.RFC3339, string(t)); err == nil {
		return ts, nil
	}
	millis, err := strconv.ParseInt(string(t), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("confluence: couldn't parse timestamp %s", t)
	}
	return time.UnixMilli(millis).UTC(), nil
}
