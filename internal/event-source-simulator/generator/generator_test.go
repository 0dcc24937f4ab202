package generator

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/party-bet/internal/game/catalog"
)

func TestNextStaysInBounds(t *testing.T) {
	g := New(rand.New(rand.NewPCG(1, 2)))
	minOdds, maxOdds := decimal.NewFromFloat(MinOdds), decimal.NewFromFloat(MaxOdds)
	categories := map[string]bool{"pk": true, "3pointer": true, "tennis": true, "generic": true}

	for i := 0; i < 500; i++ {
		ev := g.Next()
		for _, o := range []decimal.Decimal{ev.OddsA, ev.OddsB} {
			if o.LessThan(minOdds) || o.GreaterThan(maxOdds) {
				t.Fatalf("odds %s out of range", o)
			}
			if o.Exponent() < -2 {
				t.Fatalf("odds %s has more than 2 decimals", o)
			}
		}
		if ev.Deadline < MinDeadline || ev.Deadline > MaxDeadline {
			t.Fatalf("deadline %d out of range", ev.Deadline)
		}
		if !categories[ev.Category] {
			t.Fatalf("category %q", ev.Category)
		}
		if ev.Question == "" || ev.OptionALabel == "" || ev.OptionBLabel == "" {
			t.Fatalf("incomplete event %+v", ev)
		}
	}
}

func TestHandlerFeedsCatalog(t *testing.T) {
	g := New(nil)
	var served []string
	g.OnGenerated = func(c string) { served = append(served, c) }

	mux := http.NewServeMux()
	mux.HandleFunc("/events/generate", g.Handler)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cat := catalog.New(catalog.Static()...)
	added := catalog.Extend(context.Background(), cat, catalog.NewHTTPSource(srv.URL), 2, zap.NewNop())
	if added != 2 || cat.Len() != 4 || len(served) != 2 {
		t.Fatalf("added = %d len = %d served = %d", added, cat.Len(), len(served))
	}

	ev, _ := cat.At(3)
	if !strings.HasPrefix(ev.ID, "gen-") || len(ev.Options) != 2 || ev.Options[0].Key != "a" {
		t.Errorf("generated event = %+v", ev)
	}
}
