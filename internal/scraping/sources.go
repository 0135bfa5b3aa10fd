package scraping

import (
	"strings"

	"hotelperf/server/internal/models"
)

// Source is an OTA the scraper command knows how to read
type Source struct {
	Name   string
	Script string
	link   func(h *models.Hotel) string
}

// Link returns the hotel's page on this OTA, or "" when none is configured
func (s Source) Link(h *models.Hotel) string {
	return strings.TrimSpace(s.link(h))
}

// Sources lists every supported OTA in scheduling order
var Sources = []Source{
	{Name: "traveloka", Script: "scrape_reviews.js", link: func(h *models.Hotel) string { return h.TravelokaLink }},
	{Name: "ticketcom", Script: "ticketcom_scrape_reviews.js", link: func(h *models.Hotel) string { return h.TicketcomLink }},
	{Name: "agoda", Script: "agoda_scrape_reviews.js", link: func(h *models.Hotel) string { return h.AgodaLink }},
	{Name: "tripcom", Script: "tripcom_scrape_reviews.js", link: func(h *models.Hotel) string { return h.TripcomLink }},
}

func SourceByName(name string) (Source, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}
