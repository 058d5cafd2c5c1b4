package model

import "fmt"

// StreamingService describes one supported Top-10 source.
type StreamingService struct {
	Slug string
	Name string
	// urlSlug is the FlixPatrol path segment, which differs from our slug
	// for some services.
	urlSlug string
}

// Supported streaming services keyed by slug.
var StreamingServices = map[string]StreamingService{
	"netflix": {Slug: "netflix", Name: "Netflix", urlSlug: "netflix"},
	"disney":  {Slug: "disney", Name: "Disney+", urlSlug: "disney"},
	"hbo":     {Slug: "hbo", Name: "HBO Max", urlSlug: "hbo-max"},
	"prime":   {Slug: "prime", Name: "Amazon Prime", urlSlug: "amazon-prime"},
	"apple":   {Slug: "apple", Name: "Apple TV+", urlSlug: "apple-tv"},
}

// ServiceSlugs returns the supported slugs in a stable order.
func ServiceSlugs() []string {
	return []string{"netflix", "disney", "hbo", "prime", "apple"}
}

// Top10URL builds the worldwide Top-10 page URL for a given date (YYYY-MM-DD).
func (s StreamingService) Top10URL(date string) string {
	return fmt.Sprintf("https://flixpatrol.com/top10/%s/world/%s/", s.urlSlug, date)
}
