// Package bgg is a minimal client for the BoardGameGeek XML API2.
package bgg

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound reports that no game matched the searched name.
var ErrNotFound = errors.New("bgg: game not found")

// Game is the metadata digest for one board game.
type Game struct {
	ID            int
	Name          string
	Description   string
	YearPublished int
	MinPlayers    int
	MaxPlayers    int
	MinPlaytime   int
	MaxPlaytime   int
	Categories    []string
	Mechanics     []string
	Rank          string
}

// PageURL is the game's canonical BoardGameGeek page.
func (g *Game) PageURL() string {
	return fmt.Sprintf("https://boardgamegeek.com/boardgame/%d", g.ID)
}

// Client queries the BoardGameGeek XML API2.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient targets the public API with a 15s timeout.
func NewClient() *Client {
	return NewClientWith("https://boardgamegeek.com/xmlapi2", &http.Client{Timeout: 15 * time.Second})
}

// NewClientWith overrides the endpoint and HTTP client, mainly for tests.
func NewClientWith(baseURL string, client *http.Client) *Client {
	return &Client{baseURL: baseURL, client: client}
}

// FindGame searches for name and returns the first match with full details.
func (c *Client) FindGame(ctx context.Context, name string) (*Game, error) {
	id, err := c.search(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.thing(ctx, id)
}

type searchDoc struct {
	Items []struct {
		ID int `xml:"id,attr"`
	} `xml:"item"`
}

func (c *Client) search(ctx context.Context, name string) (int, error) {
	endpoint := fmt.Sprintf("%s/search?query=%s&type=boardgame", c.baseURL, url.QueryEscape(name))
	var doc searchDoc
	if err := c.getXML(ctx, endpoint, &doc); err != nil {
		return 0, err
	}
	if len(doc.Items) == 0 {
		return 0, ErrNotFound
	}
	return doc.Items[0].ID, nil
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

type thingDoc struct {
	Items []struct {
		ID    int `xml:"id,attr"`
		Names []struct {
			Type  string `xml:"type,attr"`
			Value string `xml:"value,attr"`
		} `xml:"name"`
		Description string    `xml:"description"`
		Year        valueAttr `xml:"yearpublished"`
		MinPlayers  valueAttr `xml:"minplayers"`
		MaxPlayers  valueAttr `xml:"maxplayers"`
		MinPlaytime valueAttr `xml:"minplaytime"`
		MaxPlaytime valueAttr `xml:"maxplaytime"`
		Links       []struct {
			Type  string `xml:"type,attr"`
			Value string `xml:"value,attr"`
		} `xml:"link"`
		Statistics struct {
			Ratings struct {
				Ranks struct {
					Rank []struct {
						Name  string `xml:"name,attr"`
						Value string `xml:"value,attr"`
					} `xml:"rank"`
				} `xml:"ranks"`
			} `xml:"ratings"`
		} `xml:"statistics"`
	} `xml:"item"`
}

func (c *Client) thing(ctx context.Context, id int) (*Game, error) {
	endpoint := fmt.Sprintf("%s/thing?id=%d&stats=1", c.baseURL, id)
	var doc thingDoc
	if err := c.getXML(ctx, endpoint, &doc); err != nil {
		return nil, err
	}
	if len(doc.Items) == 0 {
		return nil, ErrNotFound
	}
	item := doc.Items[0]

	game := &Game{
		ID:            item.ID,
		Description:   item.Description,
		YearPublished: atoiOrZero(item.Year.Value),
		MinPlayers:    atoiOrZero(item.MinPlayers.Value),
		MaxPlayers:    atoiOrZero(item.MaxPlayers.Value),
		MinPlaytime:   atoiOrZero(item.MinPlaytime.Value),
		MaxPlaytime:   atoiOrZero(item.MaxPlaytime.Value),
	}
	for _, n := range item.Names {
		if n.Type == "primary" {
			game.Name = n.Value
			break
		}
	}
	if game.Name == "" && len(item.Names) > 0 {
		game.Name = item.Names[0].Value
	}
	for _, link := range item.Links {
		switch link.Type {
		case "boardgamecategory":
			game.Categories = append(game.Categories, link.Value)
		case "boardgamemechanic":
			game.Mechanics = append(game.Mechanics, link.Value)
		}
	}
	for _, rank := range item.Statistics.Ratings.Ranks.Rank {
		if rank.Name == "boardgame" {
			game.Rank = rank.Value
			break
		}
	}
	return game, nil
}

func (c *Client) getXML(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("bgg request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bgg: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("bgg: read response: %w", err)
	}
	if err := xml.Unmarshal(body, out); err != nil {
		return fmt.Errorf("bgg: decode response: %w", err)
	}
	return nil
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
