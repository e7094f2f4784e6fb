package bmkg

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// NowcastItem is one entry from the nowcast warning feed.
type NowcastItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type nowcastFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []NowcastItem `xml:"item"`
	} `xml:"channel"`
}

// FetchNowcast retrieves the nowcast warning feed. A document that does not
// parse as RSS is a fetch error.
func (c *Client) FetchNowcast(ctx context.Context) ([]NowcastItem, error) {
	body, err := c.get(ctx, c.nowcastURL)
	if err != nil {
		return nil, err
	}

	var feed nowcastFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode nowcast feed: %w", err)
	}

	items := feed.Channel.Items
	for i := range items {
		items[i].Title = strings.TrimSpace(items[i].Title)
		items[i].Link = strings.TrimSpace(items[i].Link)
		items[i].Description = strings.TrimSpace(items[i].Description)
		items[i].PubDate = strings.TrimSpace(items[i].PubDate)
	}
	return items, nil
}
