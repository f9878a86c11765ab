package model

import "sync"

// Banner categories, matching the web app's alert classes.
const (
	BannerSuccess = "success"
	BannerDanger  = "danger"
)

// Banner is one dismissible notification shown above the desk forms.
type Banner struct {
	Category string
	Text     string
}

// Banners queues notifications produced by form submissions until the desk
// page is next loaded, like flashed messages on the web.
type Banners struct {
	mu      sync.Mutex
	pending []Banner
}

// Push queues a banner.
func (b *Banners) Push(category, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, Banner{Category: category, Text: text})
}

// Pop returns and clears the queued banners.
func (b *Banners) Pop() []Banner {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}
