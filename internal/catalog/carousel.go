package catalog

import (
	"errors"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

var (
	// ErrImageOutOfRange is returned by Jump for an index outside the image list.
	ErrImageOutOfRange = errors.New("catalog: image index out of range")
	// ErrClosed is returned when stepping a closed carousel.
	ErrClosed = errors.New("catalog: carousel is closed")
	// ErrNoImages is returned when opening an item that has no image at all.
	ErrNoImages = errors.New("catalog: item has no images")
)

// Carousel is the detail view state: closed, or open on one item at an image index.
type Carousel struct {
	open   bool
	item   content.ProductItem
	images []string
	index  int
}

// Open shows item from its first image.
func (c *Carousel) Open(item content.ProductItem) error {
	images := item.ImageList()
	if len(images) == 0 {
		c.Close()
		return ErrNoImages
	}
	c.open = true
	c.item = item
	c.images = images
	c.index = 0
	return nil
}

// Close returns to the closed state.
func (c *Carousel) Close() {
	*c = Carousel{}
}

// IsOpen reports whether an item is shown.
func (c *Carousel) IsOpen() bool { return c.open }

// Item returns the open item.
func (c *Carousel) Item() content.ProductItem { return c.item }

// Index returns the current image position.
func (c *Carousel) Index() int { return c.index }

// Images returns the open item's image list.
func (c *Carousel) Images() []string { return append([]string(nil), c.images...) }

// Current returns the image at the current position.
func (c *Carousel) Current() string {
	if !c.open {
		return ""
	}
	return c.images[c.index]
}

// Next advances one image, wrapping to the start.
func (c *Carousel) Next() error {
	if !c.open {
		return ErrClosed
	}
	c.index = (c.index + 1) % len(c.images)
	return nil
}

// Prev steps back one image, wrapping to the end.
func (c *Carousel) Prev() error {
	if !c.open {
		return ErrClosed
	}
	c.index = (c.index - 1 + len(c.images)) % len(c.images)
	return nil
}

// Jump moves to image i.
func (c *Carousel) Jump(i int) error {
	if !c.open {
		return ErrClosed
	}
	if i < 0 || i >= len(c.images) {
		return ErrImageOutOfRange
	}
	c.index = i
	return nil
}

// IndexOfImage returns the position of src in the open item's images, or -1.
func (c *Carousel) IndexOfImage(src string) int {
	for i, img := range c.images {
		if img == src {
			return i
		}
	}
	return -1
}
