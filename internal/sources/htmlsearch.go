package sources

import (
    "bytes"
    "context"
    "log"
    "net/http"
    "net/url"
    "regexp"
    "strings"
    "time"
    "unicode"

    "golang.org/x/net/html"

    "provintel/internal/domain"
)

const htmlSearchURL = "https://html.duckduckgo.com/html/"

const (
    htmlMaxSnippets = 10
    htmlMinSnippet  = 20
)

var whitespaceRe = regexp.MustCompile(`[\n\t\r\s\xA0]+`)

// inlineTags are the elements whose text is taken as a candidate snippet.
var inlineTags = map[string]bool{"a": true, "span": true, "b": true, "em": true, "strong": true}

// HTMLSearch scrapes a plain HTML results page. Best effort: layout changes
// on the remote side only reduce the number of snippets.
type HTMLSearch struct {
    fetcher
    BaseURL string
}

func NewHTMLSearch(client *http.Client, userAgent string) *HTMLSearch {
    f := newFetcher("html_search", client, userAgent, 0.2)
    f.jitterMin, f.jitterMax = time.Second, 3*time.Second
    return &HTMLSearch{fetcher: f, BaseURL: htmlSearchURL}
}

func (h *HTMLSearch) Name() string { return h.name }

func (h *HTMLSearch) Fetch(ctx context.Context, target domain.Target) []domain.Signal {
    q := strings.TrimSpace(target.DisplayName() + " " + target.Location())
    body, err := h.get(ctx, h.BaseURL+"?"+url.Values{"q": {q}}.Encode())
    if err != nil {
        log.Printf("html_search: %s: %v", target.DisplayName(), err)
        return nil
    }
    doc, err := html.Parse(bytes.NewReader(body))
    if err != nil {
        log.Printf("html_search: %s: parse: %v", target.DisplayName(), err)
        return nil
    }

    tokens := nameTokens(target.DisplayName())
    var out []domain.Signal
    for _, snippet := range extractSnippets(doc) {
        if len(out) >= htmlMaxSnippets {
            break
        }
        if containsAny(strings.ToLower(snippet), tokens) {
            out = append(out, domain.Signal{Source: h.name, Text: snippet})
        }
    }
    return out
}

// extractSnippets returns the de-duplicated text of inline and snippet-classed
// elements in document order. Matched elements are not descended into.
func extractSnippets(doc *html.Node) []string {
    seen := map[string]bool{}
    var out []string
    var walk func(*html.Node)
    walk = func(n *html.Node) {
        if n.Type == html.ElementNode {
            if n.Data == "script" || n.Data == "style" {
                return
            }
            if inlineTags[n.Data] || hasSnippetClass(n) {
                text := strings.TrimSpace(whitespaceRe.ReplaceAllString(extractText(n), " "))
                if len(text) >= htmlMinSnippet && !seen[text] {
                    seen[text] = true
                    out = append(out, text)
                }
                return
            }
        }
        for c := n.FirstChild; c != nil; c = c.NextSibling {
            walk(c)
        }
    }
    walk(doc)
    return out
}

func hasSnippetClass(n *html.Node) bool {
    for _, attr := range n.Attr {
        if attr.Key == "class" && strings.Contains(attr.Val, "snippet") {
            return true
        }
    }
    return false
}

func extractText(n *html.Node) string {
    if n.Type == html.TextNode {
        return n.Data
    }
    var sb strings.Builder
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        sb.WriteString(extractText(c))
    }
    return sb.String()
}

// nameTokens splits a display name into lowercase words of three or more
// letters, dropping the "Dr." honorific.
func nameTokens(name string) []string {
    var out []string
    for _, f := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
        return !unicode.IsLetter(r) && !unicode.IsDigit(r)
    }) {
        if len(f) < 3 || f == "unknown" || f == "provider" {
            continue
        }
        out = append(out, f)
    }
    return out
}

func containsAny(s string, tokens []string) bool {
    for _, t := range tokens {
        if strings.Contains(s, t) {
            return true
        }
    }
    return false
}
