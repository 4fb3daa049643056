// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package asciidoc

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/asciidoc/internal/normhtml"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Paragraph",
			input: "Hello, *World*!",
			want:  `<div class="paragraph"><p>Hello, <strong>World</strong>!</p></div>`,
		},
		{
			name:  "ParagraphMetadata",
			input: ".Greeting\n[#hi.lead]\nHi.",
			want:  `<div id="hi" class="paragraph lead"><div class="title">Greeting</div><p>Hi.</p></div>`,
		},
		{
			name:  "Section",
			input: "== Intro\n\nText.\n",
			want: `<div class="sect1"><h2 id="_intro">Intro</h2><div class="sectionbody">` +
				`<div class="paragraph"><p>Text.</p></div>` +
				`</div></div>`,
		},
		{
			name:  "Subsection",
			input: "=== Details\n",
			want:  `<div class="sect2"><h3 id="_details">Details</h3></div>`,
		},
		{
			name:  "ThematicBreak",
			input: "'''",
			want:  `<hr>`,
		},
		{
			name:  "PageBreak",
			input: "<<<",
			want:  `<div style="page-break-after: always;"></div>`,
		},
		{
			name:  "Listing",
			input: "----\na < b\n----",
			want:  `<div class="listingblock"><div class="content"><pre>a &lt; b</pre></div></div>`,
		},
		{
			name:  "Source",
			input: "[source,go]\n----\nfmt.Println()\n----",
			want: `<div class="listingblock"><div class="content">` +
				`<pre class="highlight"><code class="language-go" data-lang="go">fmt.Println()</code></pre>` +
				`</div></div>`,
		},
		{
			name:  "LiteralParagraph",
			input: " indented",
			want:  `<div class="literalblock"><div class="content"><pre>indented</pre></div></div>`,
		},
		{
			name:  "Example",
			input: ".Ex\n====\nInside.\n====",
			want: `<div class="exampleblock"><div class="title">Ex</div><div class="content">` +
				`<div class="paragraph"><p>Inside.</p></div>` +
				`</div></div>`,
		},
		{
			name:  "Sidebar",
			input: ".Aside\n****\nS.\n****",
			want: `<div class="sidebarblock"><div class="content"><div class="title">Aside</div>` +
				`<div class="paragraph"><p>S.</p></div>` +
				`</div></div>`,
		},
		{
			name:  "Open",
			input: "--\nOpen.\n--",
			want:  `<div class="openblock"><div class="content"><div class="paragraph"><p>Open.</p></div></div></div>`,
		},
		{
			name:  "Quote",
			input: "[quote, Abraham Lincoln, Gettysburg Address]\n____\nFour score.\n____",
			want: `<div class="quoteblock"><blockquote><div class="paragraph"><p>Four score.</p></div></blockquote>` +
				`<div class="attribution">&#8212; Abraham Lincoln<br><cite>Gettysburg Address</cite></div>` +
				`</div>`,
		},
		{
			name:  "Verse",
			input: "[verse, Poet]\n____\nLine one\nLine two\n____",
			want: "<div class=\"verseblock\"><pre class=\"content\">Line one\nLine two</pre>" +
				`<div class="attribution">&#8212; Poet</div>` +
				`</div>`,
		},
		{
			name:  "Admonition",
			input: "[NOTE]\nRead this.",
			want: `<div class="admonitionblock note"><table><tr>` +
				`<td class="icon"><div class="title">Note</div></td>` +
				`<td class="content">Read this.</td>` +
				`</tr></table></div>`,
		},
		{
			name:  "Pass",
			input: "++++\n<b>raw</b>\n++++",
			want:  `<b>raw</b>`,
		},
		{
			name:  "Stem",
			input: "[stem]\n++++\nx^2\n++++",
			want:  `<div class="stemblock"><div class="content">\[x^2\]</div></div>`,
		},
		{
			name:  "Comment",
			input: "////\nHidden.\n////",
			want:  ``,
		},
		{
			name:  "Image",
			input: "image::sunset.jpg[Sunset,300,200]",
			want: `<div class="imageblock"><div class="content">` +
				`<img src="sunset.jpg" alt="Sunset" width="300" height="200">` +
				`</div></div>`,
		},
		{
			name:  "ImageDefaultAlt",
			input: "image::images/tiger_lily.png[]",
			want: `<div class="imageblock"><div class="content">` +
				`<img src="images/tiger_lily.png" alt="tiger lily">` +
				`</div></div>`,
		},
		{
			name:  "Video",
			input: "video::intro.mp4[]",
			want: `<div class="videoblock"><div class="content">` +
				`<video src="intro.mp4" controls>Your browser does not support the video tag.</video>` +
				`</div></div>`,
		},
		{
			name:  "AttributeEntry",
			input: ":name: value",
			want:  ``,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse(test.input)
			buf := new(bytes.Buffer)
			if err := new(HTMLRenderer).Render(buf, doc.Blocks); err != nil {
				t.Error("Render:", err)
			}
			got := string(normhtml.NormalizeHTML(buf.Bytes()))
			want := string(normhtml.NormalizeHTML([]byte(test.want)))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Input:\n%s\nOutput (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestRenderSeparatesBlocks(t *testing.T) {
	doc := Parse("Para one.\n\n:foo: bar\n\n////\nHidden.\n////\n\nPara two.\n")
	buf := new(bytes.Buffer)
	if err := RenderHTML(buf, doc); err != nil {
		t.Error("RenderHTML:", err)
	}
	const want = "<div class=\"paragraph\">\n<p>Para one.</p>\n</div>\n" +
		"\n" +
		"<div class=\"paragraph\">\n<p>Para two.</p>\n</div>\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestHTMLRendererIgnoreRaw(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "NoRaw",
			input: "Hello World!",
			want:  "<div class=\"paragraph\">\n<p>Hello World!</p>\n</div>\n",
		},
		{
			name:  "PassBlock",
			input: "++++\n<table>\n<tr><td>Hello</td></tr>\n</table>\n++++",
			want:  "",
		},
		{
			name:  "PassParagraph",
			input: "[pass]\n<b>Hello</b>\n\nWorld!",
			want:  "<div class=\"paragraph\">\n<p>World!</p>\n</div>\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse(test.input)
			r := &HTMLRenderer{IgnoreRaw: true}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc.Blocks); err != nil {
				t.Error("Render:", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("output = %q; want %q", got, test.want)
			}
		})
	}
}

func TestHTMLRendererFilter(t *testing.T) {
	const input = "++++\n" +
		"<strong> <title> <style> <em>\n" +
		"<XMP> is disallowed. <!-- <xmp> --> is a comment.\n" +
		"++++\n"
	tests := []struct {
		name      string
		filterTag func(tag []byte) bool
		want      string
	}{
		{
			name:      "GFM",
			filterTag: FilterTagGFM,
			want: "<strong> &lt;title> &lt;style> <em>\n" +
				"&lt;XMP> is disallowed. <!-- <xmp> --> is a comment.\n",
		},
		{
			name: "NoFilter",
			want: "<strong> <title> <style> <em>\n" +
				"<XMP> is disallowed. <!-- <xmp> --> is a comment.\n",
		},
		{
			name:      "AllowAll",
			filterTag: func(tag []byte) bool { return false },
			want: "<strong> <title> <style> <em>\n" +
				"<XMP> is disallowed. <!-- <xmp> --> is a comment.\n",
		},
		{
			name:      "DenyAll",
			filterTag: func(tag []byte) bool { return true },
			want: "&lt;strong> &lt;title> &lt;style> &lt;em>\n" +
				"&lt;XMP> is disallowed. <!-- <xmp> --> is a comment.\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc := Parse(input)
			r := &HTMLRenderer{FilterTag: test.filterTag}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, doc.Blocks); err != nil {
				t.Error("Render:", err)
			}
			if diff := cmp.Diff(test.want, buf.String()); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

type errWriter struct{ err error }

func (w errWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

func TestRenderWriteError(t *testing.T) {
	errBoom := errors.New("boom")
	doc := Parse("Hello.")
	err := RenderHTML(errWriter{errBoom}, doc)
	if !errors.Is(err, errBoom) {
		t.Errorf("RenderHTML(...) = %v; want %v", err, errBoom)
	}
}

func BenchmarkRenderHTML(b *testing.B) {
	input := new(bytes.Buffer)
	testsuite := loadTestSuite(b)
	for i, test := range testsuite {
		if i > 0 {
			input.WriteString("\n\n")
		}
		input.WriteString(test.Source)
	}
	doc := Parse(input.String())
	b.ResetTimer()
	b.SetBytes(int64(input.Len()))
	b.ReportMetric(float64(len(testsuite)), "examples/op")

	for i := 0; i < b.N; i++ {
		RenderHTML(io.Discard, doc)
	}
}
