// Copyright 2025 The statecache Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Well-known msgtype values from the client/server API.
const (
	MsgText     = "m.text"
	MsgImage    = "m.image"
	MsgVideo    = "m.video"
	MsgAudio    = "m.audio"
	MsgFile     = "m.file"
	MsgLocation = "m.location"
)

// FormatHTML is the format value for HTML-formatted message bodies.
const FormatHTML = "org.matrix.custom.html"

// MessageContent is the content of an m.room.message event. Exactly one
// variant is active per message; msgtypes this package does not know
// about are preserved as an UnknownMessage rather than dropped.
type MessageContent interface {
	MsgType() string
}

// ThumbnailInfo is the thumbnail metadata for image, video, file and
// location messages.
type ThumbnailInfo struct {
	Height   int64  `json:"h,omitempty"`
	Width    int64  `json:"w,omitempty"`
	Mimetype string `json:"mimetype,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// ImageInfo is the info block for m.image messages.
type ImageInfo struct {
	Height        int64          `json:"h,omitempty"`
	Width         int64          `json:"w,omitempty"`
	Mimetype      string         `json:"mimetype,omitempty"`
	Size          int64          `json:"size,omitempty"`
	ThumbnailInfo *ThumbnailInfo `json:"thumbnail_info,omitempty"`
	ThumbnailURL  string         `json:"thumbnail_url,omitempty"`
}

// VideoInfo is the info block for m.video messages. The duration is in
// milliseconds, as on the wire.
type VideoInfo struct {
	Height        int64          `json:"h,omitempty"`
	Width         int64          `json:"w,omitempty"`
	Mimetype      string         `json:"mimetype,omitempty"`
	Size          int64          `json:"size,omitempty"`
	Duration      int64          `json:"duration,omitempty"`
	ThumbnailInfo *ThumbnailInfo `json:"thumbnail_info,omitempty"`
	ThumbnailURL  string         `json:"thumbnail_url,omitempty"`
}

// AudioInfo is the info block for m.audio messages.
type AudioInfo struct {
	Mimetype string `json:"mimetype,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Duration int64  `json:"duration,omitempty"`
}

// FileInfo is the info block for m.file messages.
type FileInfo struct {
	Mimetype      string         `json:"mimetype,omitempty"`
	Size          int64          `json:"size,omitempty"`
	ThumbnailInfo *ThumbnailInfo `json:"thumbnail_info,omitempty"`
	ThumbnailURL  string         `json:"thumbnail_url,omitempty"`
}

// TextMessage is the content of an m.text message. FormattedBody and
// Format are only set for formatted (usually HTML) messages.
type TextMessage struct {
	MsgTypeField  string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

func (m *TextMessage) MsgType() string { return m.MsgTypeField }

// ImageMessage is the content of an m.image message.
type ImageMessage struct {
	MsgTypeField string     `json:"msgtype"`
	Body         string     `json:"body"`
	URL          string     `json:"url"`
	Info         *ImageInfo `json:"info,omitempty"`
}

func (m *ImageMessage) MsgType() string { return m.MsgTypeField }

// VideoMessage is the content of an m.video message.
type VideoMessage struct {
	MsgTypeField string     `json:"msgtype"`
	Body         string     `json:"body"`
	URL          string     `json:"url"`
	Info         *VideoInfo `json:"info,omitempty"`
}

func (m *VideoMessage) MsgType() string { return m.MsgTypeField }

// AudioMessage is the content of an m.audio message.
type AudioMessage struct {
	MsgTypeField string     `json:"msgtype"`
	Body         string     `json:"body"`
	URL          string     `json:"url"`
	Info         *AudioInfo `json:"info,omitempty"`
}

func (m *AudioMessage) MsgType() string { return m.MsgTypeField }

// FileMessage is the content of an m.file message.
type FileMessage struct {
	MsgTypeField string    `json:"msgtype"`
	Body         string    `json:"body"`
	URL          string    `json:"url"`
	Info         *FileInfo `json:"info,omitempty"`
}

func (m *FileMessage) MsgType() string { return m.MsgTypeField }

// LocationMessage is the content of an m.location message.
type LocationMessage struct {
	MsgTypeField  string         `json:"msgtype"`
	Body          string         `json:"body"`
	GeoURI        string         `json:"geo_uri"`
	ThumbnailInfo *ThumbnailInfo `json:"thumbnail_info,omitempty"`
	ThumbnailURL  string         `json:"thumbnail_url,omitempty"`
}

func (m *LocationMessage) MsgType() string { return m.MsgTypeField }

// UnknownMessage carries the verbatim content of a message whose msgtype
// this package does not recognise. The payload is never dropped: Raw
// holds the original content JSON and marshalling reproduces it.
type UnknownMessage struct {
	MsgTypeField string
	Raw          json.RawMessage
}

func (m *UnknownMessage) MsgType() string { return m.MsgTypeField }

// MarshalJSON reproduces the original payload, stamping the msgtype key
// in case the variant was constructed rather than parsed.
func (m *UnknownMessage) MarshalJSON() ([]byte, error) {
	raw := []byte(m.Raw)
	if raw == nil {
		raw = []byte(`{}`)
	}
	if m.MsgTypeField == "" {
		return raw, nil
	}
	return sjson.SetBytes(raw, "msgtype", m.MsgTypeField)
}

// UnmarshalJSON keeps the verbatim payload alongside the extracted tag.
func (m *UnknownMessage) UnmarshalJSON(raw []byte) error {
	m.Raw = append(m.Raw[:0], raw...)
	m.MsgTypeField = gjson.GetBytes(raw, "msgtype").Str
	return nil
}

// ParseMessageContent turns raw m.room.message content into the variant
// selected by its msgtype tag. Content with a missing or unrecognised
// msgtype parses into an UnknownMessage; this function only fails on
// content that is not valid JSON.
func ParseMessageContent(raw []byte) (MessageContent, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &MalformedEventError{Field: "content"}
	}
	var dst MessageContent
	switch gjson.GetBytes(raw, "msgtype").Str {
	case MsgText:
		dst = &TextMessage{}
	case MsgImage:
		dst = &ImageMessage{}
	case MsgVideo:
		dst = &VideoMessage{}
	case MsgAudio:
		dst = &AudioMessage{}
	case MsgFile:
		dst = &FileMessage{}
	case MsgLocation:
		dst = &LocationMessage{}
	default:
		dst = &UnknownMessage{}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
