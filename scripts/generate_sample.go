package main

import (
	"encoding/json"
	"fmt"
	mrand "math/rand"
	"os"
	"time"

	"github.com/mithrel/folio/pkg/api"
)

func main() {
	// Deterministic seed for reproducible layouts
	mr := mrand.New(mrand.NewSource(42))

	tags := make([]string, 12)
	for i := range tags {
		tags[i] = fmt.Sprintf("tag%02d", i+1)
	}
	categories := []string{"general", "invoice", "report", "letter"}

	const total = 50
	out := make([]*api.Template, 0, total)
	base := time.Now().UTC()

	for i := 0; i < total; i++ {
		t := api.NewTemplate(fmt.Sprintf("Sample Template %03d", i+1))
		t.Category = categories[i%len(categories)]
		t.Tags = sampleTags(mr, tags, 1+mr.Intn(3))
		t.Description = fmt.Sprintf("Generated sample %03d", i+1)

		pages := 1 + mr.Intn(3)
		for p := 2; p <= pages; p++ {
			t.Pages = append(t.Pages, api.NewPage(p, nil))
		}
		for p := range t.Pages {
			h := api.NewElement(api.ElementHeading, api.Position{X: 20, Y: 20}, api.Size{Width: 170, Height: 12})
			h.Content = &api.HeadingContent{Text: fmt.Sprintf("{{title}} page %d", p+1), Level: 1}
			t.Pages[p].Elements = append(t.Pages[p].Elements, h)

			// 0-3 body paragraphs on a 10mm grid
			for k := mr.Intn(4); k > 0; k-- {
				el := api.NewElement(api.ElementText,
					api.Position{X: 20, Y: float64(40 + 10*mr.Intn(20))},
					api.Size{Width: float64(50 + 10*mr.Intn(12)), Height: 20})
				el.Content = &api.TextContent{Text: "Dear {{customer.name}},"}
				el.ZIndex = 1 + k
				t.Pages[p].Elements = append(t.Pages[p].Elements, el)
			}
		}

		t.CreatedAt = base.Add(-time.Duration(30*i+mr.Intn(60)) * time.Minute)
		t.UpdatedAt = t.CreatedAt
		if mr.Float64() < 0.3 {
			t.UpdatedAt = t.CreatedAt.Add(time.Duration(mr.Intn(180)) * time.Minute)
		}
		out = append(out, t)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

func sampleTags(r *mrand.Rand, pool []string, k int) []string {
	if k >= len(pool) {
		k = len(pool)
	}
	idx := r.Perm(len(pool))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}
