package bgg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResponse = `<?xml version="1.0" encoding="utf-8"?>
<items total="2" termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">
  <item type="boardgame" id="13"><name type="primary" value="CATAN"/><yearpublished value="1995"/></item>
  <item type="boardgame" id="27710"><name type="primary" value="Catan: Cities &amp; Knights"/></item>
</items>`

const thingResponse = `<?xml version="1.0" encoding="utf-8"?>
<items termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">
  <item type="boardgame" id="13">
    <name type="primary" sortindex="1" value="CATAN"/>
    <name type="alternate" sortindex="1" value="The Settlers of Catan"/>
    <description>In CATAN, players try to be the dominant force on the island.</description>
    <yearpublished value="1995"/>
    <minplayers value="3"/>
    <maxplayers value="4"/>
    <minplaytime value="60"/>
    <maxplaytime value="120"/>
    <link type="boardgamecategory" id="1026" value="Negotiation"/>
    <link type="boardgamecategory" id="1008" value="Economic"/>
    <link type="boardgamemechanic" id="2072" value="Dice Rolling"/>
    <statistics page="1">
      <ratings>
        <ranks>
          <rank type="subtype" id="1" name="boardgame" friendlyname="Board Game Rank" value="429" bayesaverage="6.9"/>
          <rank type="family" id="5497" name="strategygames" friendlyname="Strategy Game Rank" value="500" bayesaverage="6.8"/>
        </ranks>
      </ratings>
    </statistics>
  </item>
</items>`

func testServer(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "catan", r.URL.Query().Get("query"))
			assert.Equal(t, "boardgame", r.URL.Query().Get("type"))
			w.Write([]byte(searchResponse))
		case "/thing":
			assert.Equal(t, "13", r.URL.Query().Get("id"))
			assert.Equal(t, "1", r.URL.Query().Get("stats"))
			w.Write([]byte(thingResponse))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return NewClientWith(srv.URL, srv.Client())
}

func TestFindGame(t *testing.T) {
	client := testServer(t)

	game, err := client.FindGame(context.Background(), "catan")
	require.NoError(t, err)

	assert.Equal(t, 13, game.ID)
	assert.Equal(t, "CATAN", game.Name)
	assert.Equal(t, 1995, game.YearPublished)
	assert.Equal(t, 3, game.MinPlayers)
	assert.Equal(t, 4, game.MaxPlayers)
	assert.Equal(t, 60, game.MinPlaytime)
	assert.Equal(t, 120, game.MaxPlaytime)
	assert.Equal(t, []string{"Negotiation", "Economic"}, game.Categories)
	assert.Equal(t, []string{"Dice Rolling"}, game.Mechanics)
	assert.Equal(t, "429", game.Rank)
	assert.Contains(t, game.Description, "dominant force")
	assert.Equal(t, "https://boardgamegeek.com/boardgame/13", game.PageURL())
}

func TestFindGameNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><items total="0"></items>`))
	}))
	defer srv.Close()

	client := NewClientWith(srv.URL, srv.Client())
	_, err := client.FindGame(context.Background(), "nonexistent game xyz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindGameServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClientWith(srv.URL, srv.Client())
	_, err := client.FindGame(context.Background(), "catan")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
