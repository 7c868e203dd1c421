// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/medai-tui/internal/model"
)

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	boldRegex       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts msgs to HTML.
func (e *HTMLExporter) Export(msgs []model.Message) ([]byte, error) {
	if err := validate(msgs); err != nil {
		return nil, err
	}
	now := time.Now()

	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("    <title>MedAI conversation</title>\n")
	sb.WriteString("    <meta name=\"generator\" content=\"medai\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", now.Format(time.RFC3339)))
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString("        <header class=\"header\">\n")
		sb.WriteString("            <h1>MedAI conversation</h1>\n")
		sb.WriteString(fmt.Sprintf("            <p class=\"metadata\">%d messages, exported %s</p>\n", len(msgs), formatTimestamp(now)))
		sb.WriteString("        </header>\n")
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, m := range msgs {
		sb.WriteString(e.renderMessage(m))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString("            <p>Not a substitute for professional medical advice.</p>\n")
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderMessage(m model.Message) string {
	var sb strings.Builder

	class := m.Sender.String()
	if m.IsError {
		class += " error"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s\">\n", class))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(roleLabel(m))))
	if e.options.IncludeTimestamps && m.Timestamp != nil {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(*m.Timestamp)))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(formatContent(m.Text))
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")
	return sb.String()
}

// formatContent escapes text and converts code spans, bold runs and paragraphs.
// Everything is escaped before any tag is inserted.
func formatContent(content string) string {
	content = html.EscapeString(strings.TrimSpace(content))

	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		code := strings.ReplaceAll(strings.TrimSpace(parts[2]), "\n", "&#10;")
		return "<pre><code>" + code + "</code></pre>"
	})
	content = inlineCodeRegex.ReplaceAllString(content, "<code>$1</code>")
	content = boldRegex.ReplaceAllString(content, "<strong>$1</strong>")

	var out []string
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if strings.HasPrefix(para, "<pre>") {
			out = append(out, para)
			continue
		}
		out = append(out, "<p>"+strings.ReplaceAll(para, "\n", "<br>\n")+"</p>")
	}
	return strings.Join(out, "\n")
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        .light-theme {
            --bg: #fff5f5;
            --card: #ffffff;
            --text: #1f2937;
            --muted: #6b7280;
            --accent: #dc2626;
            --user: #fee2e2;
            --error: #b91c1c;
        }

        .dark-theme {
            --bg: #1c1917;
            --card: #292524;
            --text: #f5f5f4;
            --muted: #a8a29e;
            --accent: #f87171;
            --user: #44403c;
            --error: #fca5a5;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
        }

        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header h1 { color: var(--accent); font-size: 1.6rem; }
        .metadata { color: var(--muted); margin-bottom: 1.5rem; }
        .message { background: var(--card); border-radius: 10px; padding: 1rem; margin-bottom: 1rem; }
        .message.user { background: var(--user); margin-left: 15%; }
        .message.error { border-left: 4px solid var(--error); }
        .message-header { display: flex; justify-content: space-between; font-weight: 600; margin-bottom: 0.5rem; }
        .timestamp { color: var(--muted); font-weight: 400; font-size: 0.85rem; }
        .message-content p + p { margin-top: 0.6rem; }
        pre { background: var(--bg); padding: 0.75rem; border-radius: 6px; overflow-x: auto; white-space: pre-wrap; }
        code { font-family: "SF Mono", Menlo, Consolas, monospace; }
        .footer { color: var(--muted); font-size: 0.85rem; text-align: center; margin-top: 2rem; }
    </style>
`
