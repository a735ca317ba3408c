package sources

import (
    "context"
    "encoding/json"
    "log"
    "net/http"
    "net/url"
    "strings"

    "provintel/internal/domain"
)

const duckDuckGoAPI = "https://api.duckduckgo.com/"

// DuckDuckGo queries the instant answer API and reads the abstract and
// related topic texts.
type DuckDuckGo struct {
    fetcher
    BaseURL string
}

func NewDuckDuckGo(client *http.Client, userAgent string) *DuckDuckGo {
    return &DuckDuckGo{fetcher: newFetcher("duckduckgo", client, userAgent, 1), BaseURL: duckDuckGoAPI}
}

func (d *DuckDuckGo) Name() string { return d.name }

type ddgTopic struct {
    Text   string     `json:"Text"`
    Topics []ddgTopic `json:"Topics"`
}

type ddgAnswer struct {
    Abstract      string     `json:"Abstract"`
    AbstractText  string     `json:"AbstractText"`
    RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

const ddgMaxTopics = 5

func (d *DuckDuckGo) Fetch(ctx context.Context, target domain.Target) []domain.Signal {
    q := strings.TrimSpace(target.DisplayName() + " " + target.Location())
    u := d.BaseURL + "?" + url.Values{
        "q":       {q},
        "format":  {"json"},
        "no_html": {"1"},
    }.Encode()
    body, err := d.get(ctx, u)
    if err != nil {
        log.Printf("duckduckgo: %s: %v", target.DisplayName(), err)
        return nil
    }
    var ans ddgAnswer
    if err := json.Unmarshal(body, &ans); err != nil {
        log.Printf("duckduckgo: %s: decode: %v", target.DisplayName(), err)
        return nil
    }

    var out []domain.Signal
    abstract := ans.Abstract
    if abstract == "" {
        abstract = ans.AbstractText
    }
    if abstract != "" {
        out = append(out, domain.Signal{Source: d.name, Text: abstract})
    }
    n := 0
    var walk func([]ddgTopic)
    walk = func(topics []ddgTopic) {
        for _, t := range topics {
            if n >= ddgMaxTopics {
                return
            }
            if t.Text != "" {
                out = append(out, domain.Signal{Source: d.name, Text: t.Text})
                n++
            }
            walk(t.Topics)
        }
    }
    walk(ans.RelatedTopics)
    return out
}
