package manual

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Catalog maps game keys (underscored, they become the PDF filename) to
// publisher manual URLs.
var Catalog = map[string]string{
	"Monopoly":            "https://www.hasbro.com/common/instruct/monins.pdf",
	"UNO":                 "https://service.mattel.com/instruction_sheets/W2085-UNO.pdf",
	"Scrabble":            "https://www.hasbro.com/common/instruct/Scrabble_%282003%29.pdf",
	"Settlers_of_Catan":   "https://www.catan.com/sites/default/files/2021-06/catan_base_rules_2020_200707.pdf",
	"Risk":                "https://www.hasbro.com/common/instruct/risk.pdf",
	"Ticket_to_Ride":      "https://cdn.1j1ju.com/medias/2c/f9/7f-ticket-to-ride-rulebook.pdf",
	"Pandemic":            "https://images-cdn.zmangames.com/us-east-1/filer_public/25/12/251252dd-1338-4f78-b90d-afe073c72363/zm7101_pandemic_rules.pdf",
	"Carcassonne":         "https://images.zmangames.com/filer_public/d5/20/d5208d61-8583-478b-a06d-b49fc9cd7aaa/zm7810_carcassonne_rules.pdf",
	"Power_Grid":          "https://www.riograndegames.com/wp-content/uploads/2018/12/Power-Grid-Recharged-Rules.pdf",
	"Agricola":            "https://cdn.1j1ju.com/medias/dd/16/f5-agricola-rulebook.pdf",
	"Scythe":              "https://cdn.1j1ju.com/medias/68/bc/6c-scythe-rulebook.pdf",
	"Wingspan":            "https://www.szellemlovas.hu/szabalyok/fesztavEN.pdf",
	"Puerto_Rico":         "https://cdn.1j1ju.com/medias/46/0f/5c-puerto-rico-rulebook.pdf",
	"Terra_Mystica":       "https://cdn.1j1ju.com/medias/9c/2c/c8-terra-mystica-rulebook.pdf",
	"7_Wonders":           "https://tesera.ru/images/items/8722/7-Wonders-Rulebook-EN.pdf",
	"Dominion":            "https://cdn.1j1ju.com/medias/59/e6/c2-dominion-rulebook.pdf",
	"Splendor":            "https://cdn.1j1ju.com/medias/7f/91/ba-splendor-rulebook.pdf",
}

// Download fetches every manual in the catalog into dir as <key>.pdf. A
// failed download is logged and the rest continue; the returned count is
// how many files were saved.
func Download(ctx context.Context, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create download dir: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}

	keys := make([]string, 0, len(Catalog))
	for k := range Catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	saved := 0
	for _, key := range keys {
		dest := filepath.Join(dir, key+".pdf")
		if err := fetch(ctx, client, Catalog[key], dest); err != nil {
			log.Printf("download: %s: %v", key, err)
			continue
		}
		log.Printf("download: saved %s", dest)
		saved++
	}
	return saved, nil
}

func fetch(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}
