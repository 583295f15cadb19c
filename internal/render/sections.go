package render

import (
	"slices"

	"github.com/daivuongnguyen/yen-may-vintage-website/internal/content"
)

// Section is one mount point of the page layout.
type Section string

const (
	SectionBanner     Section = "banner"
	SectionHeader     Section = "header"
	SectionHero       Section = "hero"
	SectionBrandHeart Section = "brand_heart"
	SectionGallery    Section = "gallery"
	SectionCommunity  Section = "community"
	SectionPrestige   Section = "prestige"
	SectionOasis      Section = "oasis"
	SectionLocation   Section = "location"
	SectionFooter     Section = "footer"
)

// Sections lists every section in page order.
func Sections() []Section {
	return []Section{
		SectionBanner, SectionHeader, SectionHero, SectionBrandHeart, SectionGallery,
		SectionCommunity, SectionPrestige, SectionOasis, SectionLocation, SectionFooter,
	}
}

var sectionIDs = map[Section]string{
	SectionBanner:     "urgency-banner",
	SectionHeader:     "header",
	SectionHero:       "hero",
	SectionBrandHeart: "brand-heart",
	SectionGallery:    "gallery",
	SectionCommunity:  "community",
	SectionPrestige:   "prestige",
	SectionOasis:      "oasis",
	SectionLocation:   "visit-us",
	SectionFooter:     "footer",
}

var sectionDeps = map[Section][]content.Subtree{
	SectionBanner:     {content.SubtreeBanner},
	SectionHeader:     {content.SubtreeBrand, content.SubtreeNavigation},
	SectionHero:       {content.SubtreeHero, content.SubtreeBrand},
	SectionBrandHeart: {content.SubtreeBrandHeart},
	SectionGallery:    {content.SubtreeGallery, content.SubtreeBrand},
	SectionCommunity:  {content.SubtreeCommunity, content.SubtreeBrand},
	SectionPrestige:   {content.SubtreePrestige},
	SectionOasis:      {content.SubtreeOasis},
	SectionLocation:   {content.SubtreeLocation},
	SectionFooter:     {content.SubtreeBrand, content.SubtreeLocation},
}

// ID is the DOM id of the section's mount point.
func (s Section) ID() string { return sectionIDs[s] }

// DependsOn lists the subtrees the section reads.
func (s Section) DependsOn() []content.Subtree { return slices.Clone(sectionDeps[s]) }

func (s Section) template() string { return "section_" + string(s) }

// affected returns the sections that read any of subtrees, in page order.
// No subtrees means every section.
func affected(subtrees []content.Subtree) []Section {
	if len(subtrees) == 0 {
		return Sections()
	}
	var out []Section
	for _, s := range Sections() {
		for _, dep := range sectionDeps[s] {
			if slices.Contains(subtrees, dep) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
