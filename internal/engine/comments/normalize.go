package comments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NoCommentsMessage accompanies an empty result when the dump has no comments.
const NoCommentsMessage = "No comments found or comments are disabled for this video"

// maxTimeMs is the largest absolute epoch offset a JavaScript Date accepts.
const maxTimeMs = 8.64e15

// Comment is one normalized comment. Pass-through fields hold the raw JSON
// value sent by yt-dlp and are omitted when yt-dlp did not send them.
type Comment struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Text        json.RawMessage `json:"text,omitempty"`
	Author      json.RawMessage `json:"author,omitempty"`
	AuthorID    json.RawMessage `json:"author_id,omitempty"`
	Time        *string         `json:"time"`
	Timestamp   json.RawMessage `json:"timestamp,omitempty"`
	LikeCount   json.RawMessage `json:"like_count,omitempty"`
	IsFavorited json.RawMessage `json:"is_favorited,omitempty"`
	Parent      json.RawMessage `json:"parent,omitempty"`
}

// Envelope is the normalized result of one dump. Found is false when the
// dump carried no comments sequence at all.
type Envelope struct {
	Found      bool
	Comments   []Comment
	VideoID    json.RawMessage
	VideoTitle json.RawMessage
}

type foundBody struct {
	Comments     []Comment       `json:"comments"`
	VideoID      json.RawMessage `json:"video_id,omitempty"`
	VideoTitle   json.RawMessage `json:"video_title,omitempty"`
	CommentCount int             `json:"comment_count"`
}

type emptyBody struct {
	Comments []Comment `json:"comments"`
	Message  string    `json:"message"`
}

// Encode serializes the envelope as compact JSON without HTML escaping.
func (e Envelope) Encode() (string, error) {
	var body any
	if e.Found {
		list := e.Comments
		if list == nil {
			list = []Comment{}
		}
		body = foundBody{
			Comments:     list,
			VideoID:      e.VideoID,
			VideoTitle:   e.VideoTitle,
			CommentCount: len(list),
		}
	} else {
		body = emptyBody{Comments: []Comment{}, Message: NoCommentsMessage}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Normalize parses a yt-dlp --dump-single-json payload and returns the
// normalized envelope as JSON text.
func Normalize(payload string) (string, error) {
	env, err := Parse(payload)
	if err != nil {
		return "", err
	}
	return env.Encode()
}

// Parse reads a yt-dlp payload field by field. Malformed JSON and shapes
// that cannot be mapped return *ParseError.
func Parse(payload string) (Envelope, error) {
	var doc json.RawMessage
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return Envelope{}, &ParseError{Msg: "invalid JSON from yt-dlp", Err: err}
	}

	switch kindOf(doc) {
	case 'n':
		return Envelope{}, &ParseError{Msg: "yt-dlp returned null"}
	case '{':
	default:
		// Scalars and arrays have no comments field.
		return Envelope{}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return Envelope{}, &ParseError{Msg: "invalid JSON from yt-dlp", Err: err}
	}

	raw, ok := top["comments"]
	if !ok || !truthy(raw) {
		return Envelope{}, nil
	}
	if kindOf(raw) != '[' {
		return Envelope{}, &ParseError{Msg: "comments is not a list"}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Envelope{}, &ParseError{Msg: "comments", Err: err}
	}

	list := make([]Comment, 0, len(entries))
	for i, entry := range entries {
		c, err := normalizeComment(entry)
		if err != nil {
			return Envelope{}, &ParseError{Msg: fmt.Sprintf("comment %d", i), Err: err}
		}
		list = append(list, c)
	}

	return Envelope{
		Found:      true,
		Comments:   list,
		VideoID:    top["id"],
		VideoTitle: top["title"],
	}, nil
}

func normalizeComment(entry json.RawMessage) (Comment, error) {
	switch kindOf(entry) {
	case 'n':
		return Comment{}, errors.New("entry is null")
	case '{':
	default:
		// Scalars carry no fields: everything is absent, time is null.
		return Comment{}, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(entry, &m); err != nil {
		return Comment{}, err
	}

	ts, err := isoTime(m["timestamp"])
	if err != nil {
		return Comment{}, err
	}

	// time_text is dropped; time is derived from timestamp instead.
	return Comment{
		ID:          m["id"],
		Text:        m["text"],
		Author:      m["author"],
		AuthorID:    m["author_id"],
		Time:        ts,
		Timestamp:   m["timestamp"],
		LikeCount:   m["like_count"],
		IsFavorited: m["is_favorited"],
		Parent:      m["parent"],
	}, nil
}

// isoTime converts a Unix-seconds timestamp to an ISO-8601 UTC string with
// millisecond precision. Absent, zero and non-numeric values yield nil.
func isoTime(raw json.RawMessage) (*string, error) {
	k := kindOf(raw)
	if k != '-' && (k < '0' || k > '9') {
		return nil, nil
	}
	sec, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, nil
	}
	if sec == 0 {
		return nil, nil
	}

	ms := sec * 1000
	if math.IsInf(ms, 0) || math.Abs(ms) > maxTimeMs {
		return nil, fmt.Errorf("invalid time value %s", raw)
	}
	s := formatISO(time.UnixMilli(int64(math.Trunc(ms))).UTC())
	return &s, nil
}

// formatISO renders t like Date.prototype.toISOString, including the
// six-digit signed year form outside 0000–9999.
func formatISO(t time.Time) string {
	y := t.Year()
	if y >= 0 && y <= 9999 {
		return t.Format("2006-01-02T15:04:05.000Z")
	}
	sign := "+"
	if y < 0 {
		sign = "-"
		y = -y
	}
	return fmt.Sprintf("%s%06d%s", sign, y, t.Format("-01-02T15:04:05.000Z"))
}

// truthy follows JavaScript truthiness for a JSON value.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch c := raw[0]; {
	case c == 'n' || c == 'f':
		return false
	case c == '"':
		return len(raw) > 2
	case c == '-' || (c >= '0' && c <= '9'):
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
	return true
}

func kindOf(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// Summary pulls the video id and comment count out of an encoded envelope.
// Non-string ids are returned as their JSON text.
func Summary(encoded string) (videoID string, count int) {
	var s struct {
		VideoID      json.RawMessage `json:"video_id"`
		CommentCount int             `json:"comment_count"`
	}
	if err := json.Unmarshal([]byte(encoded), &s); err != nil {
		return "", 0
	}
	if len(s.VideoID) > 0 {
		if err := json.Unmarshal(s.VideoID, &videoID); err != nil {
			videoID = string(s.VideoID)
		}
	}
	return videoID, s.CommentCount
}
