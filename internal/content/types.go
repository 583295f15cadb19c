package content

import (
	"slices"
	"strings"
)

// Tree is the full set of renderable storefront content.
type Tree struct {
	Brand      Brand             `yaml:"brand" json:"brand"`
	Banner     Banner            `yaml:"urgencyBanner" json:"urgencyBanner"`
	Hero       Hero              `yaml:"hero" json:"hero"`
	BrandHeart BrandHeart        `yaml:"brandHeart" json:"brandHeart"`
	Gallery    Gallery           `yaml:"gallery" json:"gallery"`
	Community  Community         `yaml:"community" json:"community"`
	Prestige   Prestige          `yaml:"prestige" json:"prestige"`
	Oasis      Oasis             `yaml:"oasis" json:"oasis"`
	Location   Location          `yaml:"location" json:"location"`
	Navigation []NavLink         `yaml:"navigation" json:"navigation"`
	Feeds      map[string]string `yaml:"feeds" json:"feeds,omitempty"`
}

// Brand holds shop identity shared by several sections.
type Brand struct {
	Name            string `yaml:"name" json:"name"`
	Tagline         string `yaml:"tagline" json:"tagline"`
	Established     string `yaml:"established" json:"established"`
	InstagramHandle string `yaml:"instagramHandle" json:"instagramHandle"`
	InstagramURL    string `yaml:"instagramUrl" json:"instagramUrl"`
	Slogan          string `yaml:"slogan" json:"slogan"`
	Copyright       string `yaml:"copyright" json:"copyright"`
}

// BrandPatch carries optional brand overrides. Empty fields are left alone.
type BrandPatch struct {
	Name            string
	Tagline         string
	Established     string
	InstagramHandle string
	InstagramURL    string
	Slogan          string
	Copyright       string
}

// Banner is the urgency strip shown above the header.
type Banner struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Message string `yaml:"message" json:"message"`
	CTAText string `yaml:"ctaText" json:"ctaText"`
	CTALink string `yaml:"ctaLink" json:"ctaLink"`
}

// Hero is the main banner section.
type Hero struct {
	HeadingLine1    string    `yaml:"headingLine1" json:"headingLine1"`
	HeadingLine2    string    `yaml:"headingLine2" json:"headingLine2"`
	Description     string    `yaml:"description" json:"description"`
	ButtonText      string    `yaml:"buttonText" json:"buttonText"`
	BackgroundImage string    `yaml:"backgroundImage" json:"backgroundImage"`
	Countdown       Countdown `yaml:"countdown" json:"countdown"`
}

// Countdown announces the next drop. TargetDate is RFC 3339.
type Countdown struct {
	Enabled        bool   `yaml:"enabled" json:"enabled"`
	TargetDate     string `yaml:"targetDate" json:"targetDate"`
	Title          string `yaml:"title" json:"title"`
	ExpiredMessage string `yaml:"expiredMessage" json:"expiredMessage"`
}

// Feature is an icon + copy card.
type Feature struct {
	Icon        string `yaml:"icon" json:"icon"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// BrandHeart is the philosophy section.
type BrandHeart struct {
	SectionLabel    string    `yaml:"sectionLabel" json:"sectionLabel"`
	HeadingLine1    string    `yaml:"headingLine1" json:"headingLine1"`
	HeadingLine2    string    `yaml:"headingLine2" json:"headingLine2"`
	HeadingLine3    string    `yaml:"headingLine3" json:"headingLine3"`
	Description     string    `yaml:"description" json:"description"`
	FeatureImage    string    `yaml:"featureImage" json:"featureImage"`
	FeatureImageAlt string    `yaml:"featureImageAlt" json:"featureImageAlt"`
	Features        []Feature `yaml:"features" json:"features"`
}

// Gallery is the product section copy plus the canonical product list.
type Gallery struct {
	SectionLabel string        `yaml:"sectionLabel" json:"sectionLabel"`
	HeadingLine1 string        `yaml:"headingLine1" json:"headingLine1"`
	HeadingLine2 string        `yaml:"headingLine2" json:"headingLine2"`
	Description  string        `yaml:"description" json:"description"`
	CTAText      string        `yaml:"ctaText" json:"ctaText"`
	ViewMoreText string        `yaml:"viewMoreText" json:"viewMoreText"`
	Items        []ProductItem `yaml:"items" json:"items"`
}

// Status is a product availability label. Values outside the known set are kept verbatim.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusReserved  Status = "Reserved"
	StatusSoldOut   Status = "Sold Out"
)

// ParseStatus maps loose spellings onto the known statuses. Empty input means Available.
func ParseStatus(raw string) Status {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(strings.Join(strings.Fields(v), " ")) {
	case "", "available", "in stock":
		return StatusAvailable
	case "reserved", "on hold":
		return StatusReserved
	case "sold out", "sold", "soldout", "sold-out":
		return StatusSoldOut
	}
	return Status(v)
}

// ProductItem is one piece in the gallery.
type ProductItem struct {
	Title    string   `yaml:"title" json:"title"`
	Status   Status   `yaml:"status" json:"status"`
	Size     string   `yaml:"size" json:"size"`
	Category string   `yaml:"category,omitempty" json:"category,omitempty"`
	Badge    string   `yaml:"badge,omitempty" json:"badge,omitempty"`
	Image    string   `yaml:"image" json:"image"`
	Images   []string `yaml:"images,omitempty" json:"images,omitempty"`
	ImageAlt string   `yaml:"imageAlt,omitempty" json:"imageAlt,omitempty"`
}

// Normalize enforces image == images[0] whenever images is present.
func (p *ProductItem) Normalize() {
	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
}

// ImageList returns the carousel images: Images when present, else the primary image.
func (p ProductItem) ImageList() []string {
	if len(p.Images) > 0 {
		return slices.Clone(p.Images)
	}
	if p.Image == "" {
		return nil
	}
	return []string{p.Image}
}

// Equal reports whether two items carry identical content.
func (p ProductItem) Equal(o ProductItem) bool {
	return p.Title == o.Title &&
		p.Status == o.Status &&
		p.Size == o.Size &&
		p.Category == o.Category &&
		p.Badge == o.Badge &&
		p.Image == o.Image &&
		p.ImageAlt == o.ImageAlt &&
		slices.Equal(p.Images, o.Images)
}

// Community is the customer photo section.
type Community struct {
	SectionLabel string           `yaml:"sectionLabel" json:"sectionLabel"`
	Heading      string           `yaml:"heading" json:"heading"`
	Description  string           `yaml:"description" json:"description"`
	TagPrompt    string           `yaml:"tagPrompt" json:"tagPrompt"`
	Photos       []CommunityPhoto `yaml:"photos" json:"photos"`
}

// CommunityPhoto is one customer photo.
type CommunityPhoto struct {
	Image    string `yaml:"image" json:"image"`
	Alt      string `yaml:"alt" json:"alt"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Date     string `yaml:"date,omitempty" json:"date,omitempty"`
}

// Prestige groups press mentions and reviews.
type Prestige struct {
	Heading           string             `yaml:"heading" json:"heading"`
	PressLogos        []string           `yaml:"pressLogos" json:"pressLogos"`
	PressItems        []PressItem        `yaml:"pressItems" json:"pressItems"`
	ReviewScreenshots []ReviewScreenshot `yaml:"reviewScreenshots" json:"reviewScreenshots"`
	Reviews           []Review           `yaml:"reviews" json:"reviews"`
}

// PressItem is an article that featured the shop.
type PressItem struct {
	Publication  string `yaml:"publication" json:"publication"`
	ArticleTitle string `yaml:"articleTitle" json:"articleTitle"`
	ArticleURL   string `yaml:"articleUrl" json:"articleUrl"`
	Logo         string `yaml:"logo,omitempty" json:"logo,omitempty"`
}

// ReviewScreenshot is a captured third-party review.
type ReviewScreenshot struct {
	Image     string `yaml:"image" json:"image"`
	SourceURL string `yaml:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
}

// Review is a customer testimonial.
type Review struct {
	Title       string `yaml:"title" json:"title"`
	Text        string `yaml:"text" json:"text"`
	AuthorName  string `yaml:"authorName" json:"authorName"`
	AuthorImage string `yaml:"authorImage" json:"authorImage"`
	Platform    string `yaml:"platform" json:"platform"`
}

// Oasis is the store experience section.
type Oasis struct {
	SectionLabel          string      `yaml:"sectionLabel" json:"sectionLabel"`
	HeadingLine1          string      `yaml:"headingLine1" json:"headingLine1"`
	HeadingLine2          string      `yaml:"headingLine2" json:"headingLine2"`
	DescriptionParagraph1 string      `yaml:"descriptionParagraph1" json:"descriptionParagraph1"`
	DescriptionParagraph2 string      `yaml:"descriptionParagraph2" json:"descriptionParagraph2"`
	CTAText               string      `yaml:"ctaText" json:"ctaText"`
	Images                OasisImages `yaml:"images" json:"images"`
	Features              []Feature   `yaml:"features" json:"features"`
}

// OasisImages are the three collage images.
type OasisImages struct {
	Main          string `yaml:"main" json:"main"`
	MainAlt       string `yaml:"mainAlt" json:"mainAlt"`
	Secondary1    string `yaml:"secondary1" json:"secondary1"`
	Secondary1Alt string `yaml:"secondary1Alt" json:"secondary1Alt"`
	Secondary2    string `yaml:"secondary2" json:"secondary2"`
	Secondary2Alt string `yaml:"secondary2Alt" json:"secondary2Alt"`
}

// Location is the visit-us section.
type Location struct {
	SectionLabel     string  `yaml:"sectionLabel" json:"sectionLabel"`
	Heading          string  `yaml:"heading" json:"heading"`
	StoreName        string  `yaml:"storeName" json:"storeName"`
	StoreDescription string  `yaml:"storeDescription" json:"storeDescription"`
	Address          Address `yaml:"address" json:"address"`
	Landmark         string  `yaml:"landmark" json:"landmark"`
	Hours            string  `yaml:"hours" json:"hours"`
	HoursNote        string  `yaml:"hoursNote" json:"hoursNote"`
	ParkingNote      string  `yaml:"parkingNote" json:"parkingNote"`
	MapEmbedURL      string  `yaml:"mapEmbedUrl" json:"mapEmbedUrl"`
}

// Address is the shop address in display and query form.
type Address struct {
	Line1 string `yaml:"line1" json:"line1"`
	Line2 string `yaml:"line2" json:"line2"`
	Full  string `yaml:"full" json:"full"`
}

// NavLink is a header navigation entry.
type NavLink struct {
	Label string `yaml:"label" json:"label"`
	Href  string `yaml:"href" json:"href"`
}

// Subtree names a part of the tree that can change independently.
type Subtree string

const (
	SubtreeBrand      Subtree = "brand"
	SubtreeBanner     Subtree = "banner"
	SubtreeHero       Subtree = "hero"
	SubtreeBrandHeart Subtree = "brandHeart"
	SubtreeGallery    Subtree = "gallery"
	SubtreeCommunity  Subtree = "community"
	SubtreePrestige   Subtree = "prestige"
	SubtreeOasis      Subtree = "oasis"
	SubtreeLocation   Subtree = "location"
	SubtreeNavigation Subtree = "navigation"
)

// AllSubtrees lists every subtree in a stable order.
func AllSubtrees() []Subtree {
	return []Subtree{
		SubtreeBrand, SubtreeBanner, SubtreeHero, SubtreeBrandHeart, SubtreeGallery,
		SubtreeCommunity, SubtreePrestige, SubtreeOasis, SubtreeLocation, SubtreeNavigation,
	}
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	cp := t
	cp.BrandHeart.Features = slices.Clone(t.BrandHeart.Features)
	cp.Gallery.Items = cloneProducts(t.Gallery.Items)
	cp.Community.Photos = slices.Clone(t.Community.Photos)
	cp.Prestige.PressLogos = slices.Clone(t.Prestige.PressLogos)
	cp.Prestige.PressItems = slices.Clone(t.Prestige.PressItems)
	cp.Prestige.ReviewScreenshots = slices.Clone(t.Prestige.ReviewScreenshots)
	cp.Prestige.Reviews = slices.Clone(t.Prestige.Reviews)
	cp.Oasis.Features = slices.Clone(t.Oasis.Features)
	cp.Navigation = slices.Clone(t.Navigation)
	if t.Feeds != nil {
		cp.Feeds = make(map[string]string, len(t.Feeds))
		for k, v := range t.Feeds {
			cp.Feeds[k] = v
		}
	}
	return cp
}

func cloneProducts(items []ProductItem) []ProductItem {
	if items == nil {
		return nil
	}
	out := make([]ProductItem, len(items))
	for i, it := range items {
		it.Images = slices.Clone(it.Images)
		out[i] = it
	}
	return out
}
