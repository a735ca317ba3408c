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

const redditSearchURL = "https://www.reddit.com/search.json"

const (
    redditMaxPosts = 5
    redditBodyLen  = 500
)

// Reddit searches public posts through the JSON search endpoint.
type Reddit struct {
    fetcher
    BaseURL string
}

func NewReddit(client *http.Client, userAgent string) *Reddit {
    f := newFetcher("reddit", client, userAgent, 0.5)
    return &Reddit{fetcher: f, BaseURL: redditSearchURL}
}

func (r *Reddit) Name() string { return r.name }

type redditListing struct {
    Data struct {
        Children []struct {
            Data struct {
                Title    string `json:"title"`
                Selftext string `json:"selftext"`
            } `json:"data"`
        } `json:"children"`
    } `json:"data"`
}

func (r *Reddit) Fetch(ctx context.Context, target domain.Target) []domain.Signal {
    q := `"` + target.DisplayName() + `"`
    if target.City != "" {
        q += " " + target.City
    }
    u := r.BaseURL + "?" + url.Values{
        "q":     {q},
        "sort":  {"new"},
        "limit": {"10"},
    }.Encode()
    body, err := r.get(ctx, u)
    if err != nil {
        log.Printf("reddit: %s: %v", target.DisplayName(), err)
        return nil
    }
    var listing redditListing
    if err := json.Unmarshal(body, &listing); err != nil {
        log.Printf("reddit: %s: decode: %v", target.DisplayName(), err)
        return nil
    }

    var out []domain.Signal
    for i, child := range listing.Data.Children {
        if i >= redditMaxPosts {
            break
        }
        text := strings.TrimSpace(child.Data.Title + " " + truncate(child.Data.Selftext, redditBodyLen))
        if text != "" {
            out = append(out, domain.Signal{Source: r.name, Text: text})
        }
    }
    return out
}
