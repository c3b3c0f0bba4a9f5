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
	"html"
	"regexp"
)

// htmlTagsRegex matches any tag-like span between "<" and the next ">".
// This is deliberately not an HTML parser: malformed markup is stripped
// on the same terms as well-formed markup.
var htmlTagsRegex = regexp.MustCompile(`<[^<]+?>`)

// RenderHTML derives the plain-text fallback body from raw formatted
// markup. The formatted body is returned unmodified; the plain body is
// the input with tag spans removed and HTML entities decoded. The
// function is pure and total: no input fails, at worst the plain body
// is empty.
func RenderHTML(rawHTML string) (plain, formatted string) {
	plain = html.UnescapeString(htmlTagsRegex.ReplaceAllString(rawHTML, ""))
	return plain, rawHTML
}

// NewHTMLMessage builds a TextMessage for HTML-formatted content,
// populating the fallback plain body from the markup.
func NewHTMLMessage(msgtype, rawHTML string) *TextMessage {
	plain, formatted := RenderHTML(rawHTML)
	return &TextMessage{
		MsgTypeField:  msgtype,
		Body:          plain,
		Format:        FormatHTML,
		FormattedBody: formatted,
	}
}
