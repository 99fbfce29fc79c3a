// Package quotes picks motivational quotes to close out bot messages.
package quotes

import (
	_ "embed"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"
)

//go:embed quotes.yml
var embeddedQuotes []byte

// Picker returns a random quote from the embedded quote list.
type Picker struct {
	quotes []string
	rand   *rand.Rand
}

// New loads the embedded quote list.
func New() (*Picker, error) {
	var quotes []string
	if err := yaml.Unmarshal(embeddedQuotes, &quotes); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal > %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("embedded quote list is empty")
	}
	return &Picker{quotes: quotes}, nil
}

// Pick returns a random quote.
func (p *Picker) Pick() string {
	if p.rand != nil {
		return p.quotes[p.rand.Intn(len(p.quotes))]
	}
	return p.quotes[rand.Intn(len(p.quotes))]
}
